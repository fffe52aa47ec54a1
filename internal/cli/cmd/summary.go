package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Fenix-Okami/language-learning-anki-generator/internal/pipeline"
)

var (
	summaryTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	summaryMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	summaryErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	summaryOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	summaryPathStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
)

// styledSummary renders the same account as Result.Summary with color:
// verdict, per-stage attempts, and the deck files or the stopping error.
func styledSummary(res *pipeline.Result) string {
	var b strings.Builder

	id := summaryTitleStyle.Render("run " + shortRunID(res.RunID))
	dur := res.Duration().Round(time.Millisecond).String()
	if res.Status == pipeline.RunDone {
		fmt.Fprintf(&b, "%s %s %s\n", id, summaryOKStyle.Render("done"), summaryMutedStyle.Render("in "+dur))
	} else {
		fmt.Fprintf(&b, "%s %s %s\n", id,
			summaryErrorStyle.Render("failed at "+string(res.FailedStage)),
			summaryMutedStyle.Render("in "+dur))
	}

	for _, s := range res.Stages {
		status := summaryOKStyle.Render(fmt.Sprintf("%-7s", s.Status))
		if s.Status != pipeline.StageSuccess {
			status = summaryErrorStyle.Render(fmt.Sprintf("%-7s", s.Status))
		}
		fmt.Fprintf(&b, "  %-9s  %s  %s  %s\n",
			s.Stage, status,
			summaryMutedStyle.Render(fmt.Sprintf("attempts=%d", s.Attempts)),
			s.Detail)
	}

	if err := res.FirstError(); err != nil {
		fmt.Fprintf(&b, "%s %s\n", summaryErrorStyle.Render("error:"), err)
	}
	if res.Status == pipeline.RunDone {
		fmt.Fprintln(&b, "decks:")
		for _, f := range res.DeckFiles {
			fmt.Fprintf(&b, "  %-10s  %s %s\n", f.Kind,
				summaryPathStyle.Render(f.Path),
				summaryMutedStyle.Render(fmt.Sprintf("(%d notes)", f.Notes)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Fenix-Okami/language-learning-anki-generator/internal/common"
	"github.com/Fenix-Okami/language-learning-anki-generator/internal/pipeline"
	"github.com/Fenix-Okami/language-learning-anki-generator/internal/store"
)

func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pipeline runs",
		RunE:  runHistory,
	}
	cmd.Flags().StringP("config", "c", "", "Path to the config file")
	cmd.Flags().StringP("id", "i", "", "Show one run in full (UUID or unique prefix)")
	cmd.Flags().IntP("limit", "n", 10, "How many runs to list")
	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := common.Load(configPath)
	if err != nil {
		return &ExitError{Code: int(pipeline.ExitBadParams), Err: err}
	}

	st := store.New(cfg.Storage, common.GetLogger())
	defer st.Close()
	out := cmd.OutOrStdout()

	if id, _ := cmd.Flags().GetString("id"); id != "" {
		run, stages, err := st.RunDetail(cmd.Context(), id)
		if err != nil {
			return &ExitError{Code: int(pipeline.ExitRunFailed), Err: err}
		}
		printRunDetail(out, run, stages)
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := st.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return &ExitError{Code: int(pipeline.ExitRunFailed), Err: err}
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, summaryMutedStyle.Render("no recorded runs"))
		return nil
	}
	for _, r := range runs {
		fmt.Fprintln(out, runLine(r))
	}
	return nil
}

func runLine(r store.PipelineRun) string {
	status := summaryOKStyle.Render(fmt.Sprintf("%-6s", r.Status))
	outcome := fmt.Sprintf("%d rows, %d decks", r.RowCount, r.DeckCount)
	if r.Status != string(pipeline.RunDone) {
		status = summaryErrorStyle.Render(fmt.Sprintf("%-6s", r.Status))
		outcome = "at " + r.FailedStage
	}
	return fmt.Sprintf("  %s  %s  %s  %s",
		summaryTitleStyle.Render(shortRunID(r.RunUUID)),
		status,
		r.StartedAt.Format("2006-01-02 15:04:05"),
		summaryMutedStyle.Render(outcome))
}

func printRunDetail(out io.Writer, run *store.PipelineRun, stages []store.StageRun) {
	status := summaryOKStyle.Render(string(run.Status))
	if run.Status != string(pipeline.RunDone) {
		status = summaryErrorStyle.Render(run.Status + " at " + run.FailedStage)
	}
	fmt.Fprintf(out, "%s  %s\n", summaryTitleStyle.Render("run "+run.RunUUID), status)
	fmt.Fprintf(out, "  started:  %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "  finished: %s (%s)\n",
		run.FinishedAt.Format(time.RFC3339),
		run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(out, "  params:   use_cache=%t  max_cache_age=%s  force_refresh=%t\n",
		run.UseCache, run.MaxCacheAge, run.ForceRefresh)
	if run.CacheHit || run.CachePath != "" {
		fmt.Fprintf(out, "  cache:    hit=%t  path=%s\n", run.CacheHit, run.CachePath)
	}
	fmt.Fprintf(out, "  rows: %d  decks: %d\n", run.RowCount, run.DeckCount)
	fmt.Fprintln(out, "  stages:")
	for _, s := range stages {
		line := fmt.Sprintf("    %-9s  %-7s  attempts=%d  %s", s.Stage, s.Status, s.Attempts, s.Detail)
		if s.ErrorKind != "" {
			line += summaryMutedStyle.Render("  [" + s.ErrorKind + "]")
		}
		fmt.Fprintln(out, line)
	}
}

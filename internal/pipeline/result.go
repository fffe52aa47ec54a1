package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/Fenix-Okami/language-learning-anki-generator/internal/deck"
)

// RunStatus is the overall verdict of a run.
type RunStatus string

const (
	RunDone   RunStatus = "done"
	RunFailed RunStatus = "failed"
)

// StageReport is one stage's line in the run summary.
type StageReport struct {
	Stage    Stage
	Status   StageStatus
	Attempts int
	Elapsed  time.Duration
	Detail   string
	Err      *ErrorInfo
}

// Result is the full account of one run.
type Result struct {
	RunID  string
	Params Params

	State       State
	Status      RunStatus
	FailedStage Stage
	Stages      []StageReport

	CacheHit  bool
	CachePath string
	RowCount  int64
	DeckFiles []deck.File

	StartedAt  time.Time
	FinishedAt time.Time
}

func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// FirstError returns the failure that ended the run, if any.
func (r *Result) FirstError() *ErrorInfo {
	for _, s := range r.Stages {
		if s.Err != nil {
			return s.Err
		}
	}
	return nil
}

// Summary renders the plain-text account: verdict, stage-by-stage attempts,
// and either the deck files or the error that stopped the run.
func (r *Result) Summary() string {
	var b strings.Builder

	switch r.Status {
	case RunDone:
		fmt.Fprintf(&b, "run %s done in %s\n", shortID(r.RunID), r.Duration().Round(time.Millisecond))
	default:
		fmt.Fprintf(&b, "run %s failed at %s in %s\n",
			shortID(r.RunID), r.FailedStage, r.Duration().Round(time.Millisecond))
	}

	for _, s := range r.Stages {
		fmt.Fprintf(&b, "  %-9s  %-7s  attempts=%d  %s\n", s.Stage, s.Status, s.Attempts, s.Detail)
	}

	if err := r.FirstError(); err != nil {
		fmt.Fprintf(&b, "error: %s\n", err)
	}
	if r.Status == RunDone {
		fmt.Fprintf(&b, "decks:\n")
		for _, f := range r.DeckFiles {
			fmt.Fprintf(&b, "  %-10s  %s (%d notes)\n", f.Kind, f.Path, f.Notes)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

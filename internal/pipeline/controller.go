package pipeline

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// ExitCode is the process exit status a run maps to.
type ExitCode int

const (
	ExitOK ExitCode = 0
	// ExitRunFailed means the pipeline started and a stage exhausted its
	// budget or hit a fatal error.
	ExitRunFailed ExitCode = 1
	// ExitBadParams means the run was rejected before the pipeline started.
	ExitBadParams ExitCode = 2
)

// Runner is what the controller drives; satisfied by *Orchestrator.
type Runner interface {
	Execute(ctx context.Context, params Params) *Result
}

// Archiver records finished runs. Archiving is best-effort: a failure to
// save history never changes the run's outcome.
type Archiver interface {
	SaveRun(ctx context.Context, res *Result) error
}

// Controller is the entry point a frontend (the CLI) talks to: it resolves
// raw parameters, invokes the orchestrator, records history, and emits the
// human-readable summary.
type Controller struct {
	Runner   Runner
	Archiver Archiver
	Log      *zap.Logger
	Out      io.Writer

	// Summarize overrides the plain-text summary when set.
	Summarize func(*Result) string
}

// Invoke runs the pipeline once and returns the exit code plus the result
// (nil when the parameters never resolved).
func (c *Controller) Invoke(ctx context.Context, raw RawParams) (*Result, ExitCode) {
	params, err := raw.Resolve()
	if err != nil {
		c.Log.Error("invalid run parameters", zap.Error(err))
		fmt.Fprintf(c.Out, "invalid run parameters: %v\n", err)
		return nil, ExitBadParams
	}

	res := c.Runner.Execute(ctx, params)

	if c.Archiver != nil {
		// History outlives cancellation; a canceled run is still a run.
		if err := c.Archiver.SaveRun(context.WithoutCancel(ctx), res); err != nil {
			c.Log.Warn("run history not saved", zap.Error(err))
		}
	}

	summary := res.Summary()
	if c.Summarize != nil {
		summary = c.Summarize(res)
	}
	fmt.Fprintln(c.Out, summary)

	if res.Status != RunDone {
		return res, ExitRunFailed
	}
	return res, ExitOK
}

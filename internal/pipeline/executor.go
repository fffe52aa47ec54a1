package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Fenix-Okami/language-learning-anki-generator/internal/common"
)

// Stage names the four pipeline stages.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageNormalize Stage = "normalize"
	StagePersist   Stage = "persist"
	StageRender    Stage = "render"
)

// StageStatus is the terminal state of one stage.
type StageStatus string

const (
	StageSuccess StageStatus = "success"
	StageFailed  StageStatus = "failed"
)

// ErrorInfo is the classified failure carried out of a stage.
type ErrorInfo struct {
	Kind     common.Kind
	Message  string
	Attempts int
}

func (e *ErrorInfo) String() string {
	if e == nil {
		return ""
	}
	return e.Kind.String() + ": " + e.Message
}

// Outcome is what running one stage produced: the artifact on success, the
// first fatal (or final) error otherwise.
type Outcome[T any] struct {
	Status   StageStatus
	Attempts int
	Elapsed  time.Duration
	Artifact T
	Err      *ErrorInfo
}

// Executor runs stage closures under a retry policy. It is stage-agnostic:
// everything it knows arrives through the policy and the closure.
type Executor struct {
	log   *zap.Logger
	sleep func(ctx context.Context, d time.Duration) error
}

func NewExecutor(log *zap.Logger) *Executor {
	return &Executor{log: log, sleep: sleepContext}
}

// Run executes fn under the policy: up to MaxAttempts calls, backoff between
// failures, retry only while the failure kind is retryable. Each attempt
// gets its own timeout when the policy sets one; an attempt that times out
// while the run itself is still live counts as transient. Exactly one log
// line is emitted per attempt. Elapsed time is measured monotonically.
func Run[T any](ctx context.Context, e *Executor, stage Stage, policy RetryPolicy, fn func(context.Context) (T, error)) Outcome[T] {
	var zero T
	start := time.Now()

	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		attemptCtx, cancel := ctx, func() {}
		if policy.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, policy.AttemptTimeout)
		}
		attemptStart := time.Now()
		artifact, err := fn(attemptCtx)
		cancel()
		attemptElapsed := time.Since(attemptStart)

		if err == nil {
			e.log.Info("stage attempt",
				zap.String("stage", string(stage)),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", maxAttempts),
				zap.String("outcome", "success"),
				zap.Duration("elapsed", attemptElapsed))
			return Outcome[T]{
				Status:   StageSuccess,
				Attempts: attempt,
				Elapsed:  time.Since(start),
				Artifact: artifact,
			}
		}

		kind := common.KindOf(err)
		if ctx.Err() != nil {
			// The run itself was canceled; the attempt timeout did not fire.
			kind = common.KindCanceled
		}

		retrying := kind.Retryable() && attempt < maxAttempts
		delay := policy.Backoff.Delay(attempt)

		fields := []zap.Field{
			zap.String("stage", string(stage)),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.String("outcome", "failed"),
			zap.Duration("elapsed", attemptElapsed),
			zap.String("error_kind", kind.String()),
			zap.Error(err),
		}
		if retrying {
			fields = append(fields, zap.Duration("retry_in", delay))
		}
		e.log.Warn("stage attempt", fields...)

		if !retrying {
			return Outcome[T]{
				Status:   StageFailed,
				Attempts: attempt,
				Elapsed:  time.Since(start),
				Artifact: zero,
				Err:      &ErrorInfo{Kind: kind, Message: err.Error(), Attempts: attempt},
			}
		}

		if err := e.sleep(ctx, delay); err != nil {
			return Outcome[T]{
				Status:   StageFailed,
				Attempts: attempt,
				Elapsed:  time.Since(start),
				Artifact: zero,
				Err: &ErrorInfo{
					Kind:     common.KindCanceled,
					Message:  "canceled while waiting to retry: " + err.Error(),
					Attempts: attempt,
				},
			}
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

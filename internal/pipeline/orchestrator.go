package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Fenix-Okami/language-learning-anki-generator/internal/cache"
	"github.com/Fenix-Okami/language-learning-anki-generator/internal/common"
	"github.com/Fenix-Okami/language-learning-anki-generator/internal/deck"
	"github.com/Fenix-Okami/language-learning-anki-generator/internal/subject"
)

// State is the orchestrator's position in the run.
type State string

const (
	StateIdle        State = "idle"
	StateFetching    State = "fetching"
	StateNormalizing State = "normalizing"
	StatePersisting  State = "persisting"
	StateRendering   State = "rendering"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// The run is a straight line; failure is reachable from any working state.
var stateTransitions = map[State][]State{
	StateIdle:        {StateFetching},
	StateFetching:    {StateNormalizing, StateFailed},
	StateNormalizing: {StatePersisting, StateFailed},
	StatePersisting:  {StateRendering, StateFailed},
	StateRendering:   {StateDone, StateFailed},
}

// RawPayload is the fetch artifact: the subject JSON, either fresh from the
// API (Data set) or pointed at by a cache file (Path set, Data nil).
type RawPayload struct {
	Path      string
	Data      []byte
	FromCache bool
	Subjects  int
}

// Fetcher pulls the full subject dump from the API.
type Fetcher interface {
	FetchSubjects(ctx context.Context) (payload []byte, subjects int, err error)
}

// Normalizer turns the raw payload into rows.
type Normalizer interface {
	Normalize(ctx context.Context, payload []byte) (subject.Table, error)
}

// Persister replaces the stored dataset and reports the row count.
type Persister interface {
	ReplaceSubjects(ctx context.Context, rows subject.Table) (int64, error)
}

// Renderer writes the deck files from what was persisted.
type Renderer interface {
	RenderDecks(ctx context.Context, persistedRows int64) ([]deck.File, error)
}

// CacheStore is the payload cache the inspector decides over.
type CacheStore interface {
	List() ([]cache.Record, error)
	Write(data []byte) (cache.Record, error)
	Load(path string) ([]byte, error)
}

// Deps wires an Orchestrator.
type Deps struct {
	Fetcher    Fetcher
	Normalizer Normalizer
	Persister  Persister
	Renderer   Renderer
	Cache      CacheStore
	Executor   *Executor
	Policies   Policies
	Log        *zap.Logger
}

// Policies carries one retry policy per stage.
type Policies struct {
	Fetch     RetryPolicy
	Normalize RetryPolicy
	Persist   RetryPolicy
	Render    RetryPolicy
}

// PoliciesFrom maps the configured retry section onto stage policies.
func PoliciesFrom(cfg common.RetryConfig) Policies {
	return Policies{
		Fetch:     PolicyFrom(cfg.Fetch),
		Normalize: PolicyFrom(cfg.Normalize),
		Persist:   PolicyFrom(cfg.Persist),
		Render:    PolicyFrom(cfg.Render),
	}
}

// Orchestrator drives one run through the stage sequence. It owns state
// transitions and artifact handoff; the executor owns attempts.
type Orchestrator struct {
	fetcher    Fetcher
	normalizer Normalizer
	persister  Persister
	renderer   Renderer
	cache      CacheStore
	exec       *Executor
	policies   Policies
	log        *zap.Logger

	now      func() time.Time
	newRunID func() string
}

func NewOrchestrator(d Deps) *Orchestrator {
	return &Orchestrator{
		fetcher:    d.Fetcher,
		normalizer: d.Normalizer,
		persister:  d.Persister,
		renderer:   d.Renderer,
		cache:      d.Cache,
		exec:       d.Executor,
		policies:   d.Policies,
		log:        d.Log,
		now:        time.Now,
		newRunID:   uuid.NewString,
	}
}

// Execute runs the pipeline once. It always returns a Result; the error
// story lives inside it. Cancellation is observed at stage boundaries: a
// canceled context fails the run before the next stage starts.
func (o *Orchestrator) Execute(ctx context.Context, params Params) *Result {
	res := &Result{
		RunID:     o.newRunID(),
		Params:    params,
		State:     StateIdle,
		StartedAt: o.now(),
	}
	log := o.log.With(zap.String("run_id", res.RunID))
	log.Info("run started",
		zap.Bool("use_cache", params.UseCache),
		zap.Duration("max_cache_age", params.MaxCacheAge),
		zap.Bool("force_refresh", params.ForceRefresh))

	// Fetch, or reuse the cache.
	o.transition(log, res, StateFetching)
	if canceled := o.failIfCanceled(ctx, log, res, StageFetch); canceled {
		return res
	}
	raw, ok := o.runFetch(ctx, log, res, params)
	if !ok {
		return o.finish(log, res, RunFailed)
	}

	// Normalize.
	o.transition(log, res, StateNormalizing)
	if canceled := o.failIfCanceled(ctx, log, res, StageNormalize); canceled {
		return res
	}
	rowsOut := Run(ctx, o.exec, StageNormalize, o.policies.Normalize, func(ctx context.Context) (subject.Table, error) {
		data := raw.Data
		if data == nil {
			loaded, err := o.cache.Load(raw.Path)
			if err != nil {
				return nil, common.WrapError(common.KindValidation, err)
			}
			data = loaded
		}
		return o.normalizer.Normalize(ctx, data)
	})
	res.Stages = append(res.Stages, report(StageNormalize, rowsOut.Status, rowsOut.Attempts, rowsOut.Elapsed,
		fmt.Sprintf("%d rows", len(rowsOut.Artifact)), rowsOut.Err))
	if rowsOut.Status != StageSuccess {
		res.FailedStage = StageNormalize
		return o.finish(log, res, RunFailed)
	}

	// Persist.
	o.transition(log, res, StatePersisting)
	if canceled := o.failIfCanceled(ctx, log, res, StagePersist); canceled {
		return res
	}
	persistOut := Run(ctx, o.exec, StagePersist, o.policies.Persist, func(ctx context.Context) (int64, error) {
		return o.persister.ReplaceSubjects(ctx, rowsOut.Artifact)
	})
	res.Stages = append(res.Stages, report(StagePersist, persistOut.Status, persistOut.Attempts, persistOut.Elapsed,
		fmt.Sprintf("%d rows written", persistOut.Artifact), persistOut.Err))
	if persistOut.Status != StageSuccess {
		res.FailedStage = StagePersist
		return o.finish(log, res, RunFailed)
	}
	res.RowCount = persistOut.Artifact

	// Render.
	o.transition(log, res, StateRendering)
	if canceled := o.failIfCanceled(ctx, log, res, StageRender); canceled {
		return res
	}
	renderOut := Run(ctx, o.exec, StageRender, o.policies.Render, func(ctx context.Context) ([]deck.File, error) {
		return o.renderer.RenderDecks(ctx, persistOut.Artifact)
	})
	res.Stages = append(res.Stages, report(StageRender, renderOut.Status, renderOut.Attempts, renderOut.Elapsed,
		fmt.Sprintf("%d deck files", len(renderOut.Artifact)), renderOut.Err))
	if renderOut.Status != StageSuccess {
		res.FailedStage = StageRender
		return o.finish(log, res, RunFailed)
	}
	res.DeckFiles = renderOut.Artifact

	return o.finish(log, res, RunDone)
}

// runFetch resolves the fetch artifact: either a cache reuse (no executor
// involvement, zero attempts) or an executed fetch stage followed by a
// best-effort cache write.
func (o *Orchestrator) runFetch(ctx context.Context, log *zap.Logger, res *Result, params Params) (RawPayload, bool) {
	records, err := o.cache.List()
	if err != nil {
		// An unreadable cache directory only costs us the shortcut.
		log.Warn("cache scan failed", zap.Error(err))
		records = nil
	}
	decision := DecideCache(params, records, o.now())
	log.Info("cache decision",
		zap.Bool("reuse", decision.Reuse),
		zap.String("reason", decision.Reason),
		zap.String("path", decision.Record.Path))

	if decision.Reuse {
		res.CacheHit = true
		res.CachePath = decision.Record.Path
		res.Stages = append(res.Stages, report(StageFetch, StageSuccess, 0, 0,
			fmt.Sprintf("reused cached payload %s", decision.Record.Path), nil))
		return RawPayload{Path: decision.Record.Path, FromCache: true}, true
	}

	out := Run(ctx, o.exec, StageFetch, o.policies.Fetch, func(ctx context.Context) (RawPayload, error) {
		data, subjects, err := o.fetcher.FetchSubjects(ctx)
		if err != nil {
			return RawPayload{}, err
		}
		return RawPayload{Data: data, Subjects: subjects}, nil
	})
	raw := out.Artifact
	detail := fmt.Sprintf("fetched %d subjects", raw.Subjects)

	if out.Status == StageSuccess && raw.Subjects > 0 {
		rec, err := o.cache.Write(raw.Data)
		if err != nil {
			// The payload is still in hand; losing the cache file only
			// costs future runs the shortcut.
			log.Warn("cache write failed", zap.Error(err))
		} else {
			raw.Path = rec.Path
			res.CachePath = rec.Path
			log.Info("cached payload", zap.String("path", rec.Path))
		}
	}

	res.Stages = append(res.Stages, report(StageFetch, out.Status, out.Attempts, out.Elapsed, detail, out.Err))
	if out.Status != StageSuccess {
		res.FailedStage = StageFetch
		return RawPayload{}, false
	}
	return raw, true
}

func (o *Orchestrator) transition(log *zap.Logger, res *Result, to State) {
	from := res.State
	if !transitionAllowed(from, to) {
		log.Error("illegal state transition",
			zap.String("from", string(from)), zap.String("to", string(to)))
	}
	res.State = to
	log.Info("pipeline state", zap.String("from", string(from)), zap.String("to", string(to)))
}

func transitionAllowed(from, to State) bool {
	for _, next := range stateTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// failIfCanceled enforces the stage-boundary cancellation check: if the
// context is already done, the pending stage is reported as failed without
// a single attempt being made.
func (o *Orchestrator) failIfCanceled(ctx context.Context, log *zap.Logger, res *Result, stage Stage) bool {
	if ctx.Err() == nil {
		return false
	}
	res.Stages = append(res.Stages, report(stage, StageFailed, 0, 0, "", &ErrorInfo{
		Kind:    common.KindCanceled,
		Message: fmt.Sprintf("run canceled before %s: %v", stage, ctx.Err()),
	}))
	res.FailedStage = stage
	o.finish(log, res, RunFailed)
	return true
}

func (o *Orchestrator) finish(log *zap.Logger, res *Result, status RunStatus) *Result {
	res.Status = status
	res.FinishedAt = o.now()
	if status == RunDone {
		o.transition(log, res, StateDone)
	} else {
		o.transition(log, res, StateFailed)
	}
	log.Info("run finished",
		zap.String("status", string(status)),
		zap.String("failed_stage", string(res.FailedStage)),
		zap.Duration("duration", res.Duration()))
	return res
}

func report(stage Stage, status StageStatus, attempts int, elapsed time.Duration, detail string, err *ErrorInfo) StageReport {
	if err != nil {
		detail = err.String()
	}
	return StageReport{
		Stage:    stage,
		Status:   status,
		Attempts: attempts,
		Elapsed:  elapsed,
		Detail:   detail,
		Err:      err,
	}
}

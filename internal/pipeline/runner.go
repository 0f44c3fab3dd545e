package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"redub/internal/logging"
	"redub/internal/rerr"
	"redub/internal/runstore"
	"redub/internal/stage"
)

// Stage binds one Failure State Machine state to the handler that executes
// it. PreQA, Synthesis, Fit, and Assemble failures are fatal to the run;
// PostQA is special-cased by Runner.Run and never fails the run.
type Stage struct {
	Name    string
	State   runstore.RunState
	Handler stage.Handler
}

// Runner drives a single run through the Failure State Machine:
// Init -> PreQA -> Synthesis -> Fit -> Assemble -> PostQA -> Done, with any
// non-PostQA stage able to transition the run to Failed(reason).
type Runner struct {
	Store  *runstore.Store
	Logger *slog.Logger
	Stages []Stage
}

// NewRunner builds a Runner with the standard five-stage sequence.
func NewRunner(store *runstore.Store, logger *slog.Logger, preqa, synthesis, fit, assemble, postqa stage.Handler) *Runner {
	return &Runner{
		Store:  store,
		Logger: logger,
		Stages: []Stage{
			{Name: "preqa", State: runstore.StatePreQA, Handler: preqa},
			{Name: "synthesis", State: runstore.StateSynthesis, Handler: synthesis},
			{Name: "fit", State: runstore.StateFit, Handler: fit},
			{Name: "assemble", State: runstore.StateAssemble, Handler: assemble},
			{Name: "postqa", State: runstore.StatePostQA, Handler: postqa},
		},
	}
}

// postQAStateName is checked against Stage.Name so PostQA's special
// never-fails-the-run treatment doesn't depend on its position in Stages.
const postQAStateName = "postqa"

// Run drives run through every configured stage in order. A failure in any
// stage other than PostQA transitions the run to Failed and stops the
// sequence; a PostQA failure is logged and the run still reaches Done, since
// a post-flight audit reports integrity concerns rather than gating
// completion.
func (r *Runner) Run(ctx context.Context, run *runstore.Run) error {
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	for _, st := range r.Stages {
		if st.Handler == nil {
			err := fmt.Errorf("stage %s: missing handler", st.Name)
			if st.Name == postQAStateName {
				logging.ErrorWithContext(logger, "postqa stage has no handler configured", "stage_failed",
					logging.String(logging.FieldStage, st.Name),
					logging.Error(err),
				)
				continue
			}
			return r.fail(ctx, run, st.Name, err, logger)
		}

		if err := r.runStage(ctx, run, st, logger); err != nil {
			if st.Name == postQAStateName {
				// PostQA findings are reported, never fatal to the run.
				logging.ErrorWithContext(logger, "postqa stage failed", "stage_failed",
					logging.String(logging.FieldStage, st.Name),
					logging.Error(err),
				)
				continue
			}
			return r.fail(ctx, run, st.Name, err, logger)
		}
	}

	if err := r.Store.SetState(ctx, run.ID, runstore.StateDone); err != nil {
		return fmt.Errorf("persist done state: %w", err)
	}
	run.State = runstore.StateDone
	return nil
}

func (r *Runner) runStage(ctx context.Context, run *runstore.Run, st Stage, baseLogger *slog.Logger) error {
	requestID := uuid.NewString()
	stageCtx := rerr.WithRequestID(rerr.WithStage(ctx, st.Name), requestID)
	if run.Mode != "" {
		stageCtx = rerr.WithMode(stageCtx, run.Mode)
	}
	stageLogger := logging.WithContext(stageCtx, baseLogger)

	if aware, ok := st.Handler.(stage.LoggerAware); ok {
		aware.SetLogger(stageLogger)
	}

	if err := r.Store.SetState(stageCtx, run.ID, st.State); err != nil {
		return fmt.Errorf("persist stage state %s: %w", st.State, err)
	}
	run.State = st.State

	start := time.Now()
	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String(logging.FieldRunID, fmt.Sprintf("%d", run.ID)),
	)

	if err := st.Handler.Prepare(stageCtx, run); err != nil {
		return fmt.Errorf("prepare %s: %w", st.Name, err)
	}

	if err := st.Handler.Execute(stageCtx, run); err != nil {
		return fmt.Errorf("execute %s: %w", st.Name, err)
	}

	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("stage_duration", time.Since(start)),
	)
	return nil
}

func (r *Runner) fail(ctx context.Context, run *runstore.Run, stageName string, cause error, logger *slog.Logger) error {
	details := rerr.Describe(cause)
	reason := details.Message
	if reason == "" {
		reason = cause.Error()
	}

	logging.ErrorWithContext(logger, "stage failed, run marked failed", "stage_failed",
		logging.String(logging.FieldStage, stageName),
		logging.String(logging.FieldErrorKind, string(details.Kind)),
		logging.Error(cause),
	)

	if err := r.Store.SetFailed(ctx, run.ID, reason); err != nil {
		return fmt.Errorf("persist failed state after %s: %w (stage error: %v)", stageName, err, cause)
	}
	run.State = runstore.StateFailed
	run.FailReason = reason
	return cause
}

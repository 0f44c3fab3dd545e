package stage

import (
	"context"
	"log/slog"

	"redub/internal/runstore"
)

// Handler describes the contract the pipeline runner needs from each
// Failure State Machine stage (PreQA, Synthesis, Fit, Assemble, PostQA).
type Handler interface {
	Prepare(context.Context, *runstore.Run) error
	Execute(context.Context, *runstore.Run) error
	HealthCheck(context.Context) Health
}

// LoggerAware is implemented by stages that accept a per-run logger.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}

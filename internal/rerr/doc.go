// Package rerr defines the error taxonomy shared by every pipeline stage.
//
// Key responsibilities:
//   - Context helpers that stamp cue index, stage name, mode, and a
//     correlation identifier for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the five kinds the engine's failure state machine understands:
//     input invalid, invariant violated, resource exhausted, integrity, and
//     tool failure.
//
// Use these helpers when wiring new stage logic so failure handling stays
// uniform: whether a run aborts, warns, or merely records an issue follows
// directly from the Kind attached here.
package rerr

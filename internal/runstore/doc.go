// Package runstore persists a single dub run's state machine and per-cue
// synthesis progress in SQLite.
//
// The store records the run's current Failure State Machine state (Init,
// PreQA, Synthesis, Fit, Assemble, PostQA, Done, or Failed) plus, per cue,
// whether its TTS segment is pending, cached, synthesized, or failed. The
// records are written as a run progresses; the pipeline does not read them
// back to resume an interrupted run, so every invocation starts the run from
// its first stage. The on-disk TTS cache is what makes re-running cheap for
// cues already synthesized.
//
// A run database is scoped to one project's output directory and is treated
// as disposable working state, not an archive.
package runstore

// Package logging assembles structured slog loggers and formatting helpers used
// across redub's pipeline.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code can automatically
// tag log lines with cue indices, stages, synthesis modes, and correlation
// IDs. The package also provides a no-op logger for tests and wiring code
// that cannot fail.
//
// # Logging Contract
//
// Level semantics:
//   - INFO: narrative milestones plus decisions that change the final muxed
//     output (mode selection, rebalance sweep outcomes, TTS backend fallback).
//   - WARN: degraded behavior or user action needed (cache misses, panic-CPM
//     escalation, subtitle reflow).
//   - ERROR: operation failed; will stop or retry.
//   - DEBUG: raw diagnostics, per-cue scoring, tool payloads, and decisions
//     that do not affect the final muxed file.
//
// # Required Fields by Level
//
// INFO logs must include:
//   - event_type: lifecycle event (e.g., "stage_start", "stage_complete", "status")
//
// WARN logs must include all three fields (the "WARN triad"):
//   - event_type: what happened (e.g., "tts_cache_miss")
//   - error_hint: actionable next step (e.g., "check tts_cache_dir permissions")
//   - impact: user-facing consequence (e.g., "cue resynthesized; run will be slower")
//
// Use WarnWithContext() helper to enforce the WARN triad automatically.
//
// ERROR logs must include:
//   - event_type: what failed
//   - error_hint: actionable next step
//   - error (via logging.Error()): the underlying error
//
// Use ErrorWithContext() helper to enforce error fields automatically.
//
// # Decision Logging
//
// Decision logs record choices that affect output. Required fields:
//   - decision_type: category (e.g., "mode_select", "rebalance_sweep", "tts_fallback")
//   - decision_result: outcome (e.g., "accepted", "rejected", "applied", "fallback")
//   - decision_reason: why (e.g., "panic_cpm_exceeded", "onset_drift_within_tolerance")
//   - decision_options: alternatives considered (e.g., "mode_a, mode_b")
//
// # Common Fields
//
// Progress: progress_stage, progress_percent, progress_message, progress_eta
// Decision: decision_type, decision_result, decision_reason, decision_options
// Events: event_type (stage_start, stage_complete, stage_failure)
// Errors: error_kind, error_operation, error_detail_path, error_code, error_hint, impact
//
// Prefer these constructors over hand-rolled slog setup to ensure new
// components emit data with the same shape and routing guarantees as the rest
// of the system.
package logging

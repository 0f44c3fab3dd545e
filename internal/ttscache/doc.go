// Package ttscache implements the TTS Orchestrator's content-addressed
// disk cache. Each entry's filename combines the cue index with a prefix of
// sha256(text, voice_id, sample_rate_hz), so a hit needs both the same
// request content and the same cue index; identical text at another cue
// index is synthesized again. Writes are atomic (write-temp-then-
// rename) and a per-cache-directory file lock makes concurrent runs
// against the same cache directory safe.
package ttscache

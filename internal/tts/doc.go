// Package tts implements the TTS Orchestrator: bounded-concurrency,
// cache-aware fan-out over a pluggable synthesis Backend. Requests are
// dispatched up to Params.Concurrency at a time, retried on transport
// failure, and normalized to mono PCM at a fixed sample rate before being
// handed back to the caller in original cue order.
package tts

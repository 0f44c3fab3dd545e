// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no domain-specific dependencies and could be extracted
// as a standalone library.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video/subtitle stream properties
//   - Format: container-level metadata (duration, size, bitrate, start time)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
//
// Helper methods on Result provide convenient access to stream counts,
// duration parsing, bitrate extraction, and source start-time detection
// (used to decide whether negative-PTS correction is needed downstream).
package ffprobe

// Package ffmpeg wraps the three media tool operations the engine needs —
// segment extraction, video re-timing, and final muxing — behind a typed
// Client interface backed by the ffmpeg CLI. Stdout/stderr are discarded
// unless the subprocess exits with an error, in which case they are
// attached to the returned error for diagnosis.
package ffmpeg

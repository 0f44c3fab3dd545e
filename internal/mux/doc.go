// Package mux wraps the final container mux: combining the assembled
// video and audio tracks (and an optional subtitle track) into the
// output file, automatically deciding whether robust-timestamp
// correction is required by probing the source video for negative
// presentation timestamps.
package mux

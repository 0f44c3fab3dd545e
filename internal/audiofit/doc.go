// Package audiofit implements the Audio Fitter: the stage that reconciles
// a synthesized cue or cluster's actual audio duration with its visual
// target span by padding with trailing silence, time-stretching via an
// ffmpeg atempo chain, or copying through untouched when the two already
// agree within a frame. An optional leading-silence trim runs first for
// slow, roomy cues where trimming buys back stretch headroom.
package audiofit

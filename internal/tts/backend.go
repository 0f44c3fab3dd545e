package tts

import (
	"context"
	"errors"
)

// Backend synthesizes a single piece of text to a speech audio file at the
// requested sample rate, returning the path to the produced file.
//
// Errors returned from Synthesize may optionally implement
// interface{ IsTransport() bool } (see TransportError) to mark themselves as
// retryable; undecorated errors are treated as non-retryable content
// failures (bad text, unsupported voice, and similar).
type Backend interface {
	Synthesize(ctx context.Context, text, voiceID string, sampleRateHz uint32) (path string, err error)
}

// transportClassifier is implemented by errors that know whether they
// resulted from a retryable transport condition (timeout, connection reset,
// rate limit) as opposed to a non-retryable content problem.
type transportClassifier interface {
	IsTransport() bool
}

// IsTransport reports whether err should be retried. Errors that don't
// implement transportClassifier are treated as non-retryable.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	var c transportClassifier
	if errors.As(err, &c) {
		return c.IsTransport()
	}
	return false
}

// TransportError wraps an underlying error and marks it as a retryable
// transport failure.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	if e == nil || e.Cause == nil {
		return "tts: transport error"
	}
	return "tts: transport error: " + e.Cause.Error()
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// IsTransport always reports true: TransportError exists to mark a failure
// as retryable.
func (e *TransportError) IsTransport() bool { return true }

// ContentError wraps an underlying error and marks it as a non-retryable
// content failure (bad input text, unknown voice ID, unsupported SSML).
type ContentError struct {
	Cause error
}

func (e *ContentError) Error() string {
	if e == nil || e.Cause == nil {
		return "tts: content error"
	}
	return "tts: content error: " + e.Cause.Error()
}

func (e *ContentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// IsTransport always reports false: ContentError exists to mark a failure
// as non-retryable.
func (e *ContentError) IsTransport() bool { return false }

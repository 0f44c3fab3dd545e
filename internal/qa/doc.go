// Package qa implements the QA Gate: a pre-flight pass that validates a
// cue list, speaker tagging, and voice map before synthesis begins, and a
// post-flight sync audit that measures how far the assembled audio's
// actual speech onset drifted from each cue's intended start time.
package qa

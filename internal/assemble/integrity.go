package assemble

import "redub/internal/rerr"

const opCheckLengthParity = "check_length_parity"

// DefaultLengthParityToleranceMS is the maximum audio/video duration
// divergence Mode B assembly tolerates before reporting an integrity
// issue.
const DefaultLengthParityToleranceMS = 100

// CheckLengthParity compares the assembled audio and video track durations
// and reports, but does not fail, a divergence beyond toleranceMS. Per the
// error taxonomy, ErrIntegrity is never fatal — the run proceeds with the
// divergence recorded for the run report.
func CheckLengthParity(audioMS, videoMS, toleranceMS int) error {
	diff := audioMS - videoMS
	if diff < 0 {
		diff = -diff
	}
	if diff <= toleranceMS {
		return nil
	}
	return rerr.WrapHint(rerr.ErrIntegrity, stageAssemble, opCheckLengthParity,
		"assembled audio and video track durations diverge beyond tolerance",
		"length_parity_exceeded",
		"check Mode B stretch ratios and gap accounting for a miscounted segment",
		nil)
}

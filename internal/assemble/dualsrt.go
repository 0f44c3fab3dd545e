package assemble

import (
	"redub/internal/config"
	"redub/internal/cue"
)

// ResolveModeASubtitle picks which cue timeline the Mode A subtitle track
// ships: the original display timing, or the rebalanced timing that audio
// fitting actually honored. Any value other than config.DualSRTPreferRebalance
// is treated as config.DualSRTPreferDisplay, since Config.Validate already
// rejects unsupported policy strings before assembly runs.
func ResolveModeASubtitle(policy string, displayCues, rebalancedCues cue.CueList) cue.CueList {
	if policy == config.DualSRTPreferRebalance {
		return rebalancedCues
	}
	return displayCues
}

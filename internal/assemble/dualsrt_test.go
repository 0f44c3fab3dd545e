package assemble

import (
	"testing"

	"redub/internal/config"
	"redub/internal/cue"
)

func TestResolveModeASubtitlePrefersDisplayByDefault(t *testing.T) {
	display := cue.CueList{{StartMS: 0, EndMS: 1000, Text: "display"}}
	rebalanced := cue.CueList{{StartMS: 0, EndMS: 1200, Text: "rebalanced"}}

	out := ResolveModeASubtitle(config.DualSRTPreferDisplay, display, rebalanced)
	if out[0].Text != "display" {
		t.Errorf("text = %q, want display timeline", out[0].Text)
	}
}

func TestResolveModeASubtitlePrefersRebalanceWhenConfigured(t *testing.T) {
	display := cue.CueList{{StartMS: 0, EndMS: 1000, Text: "display"}}
	rebalanced := cue.CueList{{StartMS: 0, EndMS: 1200, Text: "rebalanced"}}

	out := ResolveModeASubtitle(config.DualSRTPreferRebalance, display, rebalanced)
	if out[0].Text != "rebalanced" {
		t.Errorf("text = %q, want rebalanced timeline", out[0].Text)
	}
}

func TestResolveModeASubtitleFallsBackToDisplayForUnknownPolicy(t *testing.T) {
	display := cue.CueList{{StartMS: 0, EndMS: 1000, Text: "display"}}
	rebalanced := cue.CueList{{StartMS: 0, EndMS: 1200, Text: "rebalanced"}}

	out := ResolveModeASubtitle("unknown_policy", display, rebalanced)
	if out[0].Text != "display" {
		t.Errorf("text = %q, want display timeline fallback", out[0].Text)
	}
}

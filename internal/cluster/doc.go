// Package cluster groups consecutive cues into single TTS requests and
// re-splits the resulting clustered audio back onto per-cue boundaries. A
// cluster boundary opens on a speaker change, a leading dialogue dash, or
// terminal punctuation on the previous cue; this keeps a single voice
// delivering one continuous thought per synthesis call instead of stitching
// together clause fragments. Once the Audio Fitter has fit the cluster's
// audio to its total visual span, SplitByDurations / SplitByDurationsSmart
// cut it back into per-cue segments, the latter snapping cut points to
// locally quiet frames so a split never lands mid-word.
package cluster

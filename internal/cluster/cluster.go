package cluster

import (
	"strings"

	"redub/internal/cue"
	"redub/internal/rerr"
)

const stageCluster = "clusterer"
const opCluster = "cluster_cues"

var terminalPunctuation = map[rune]bool{
	'.': true, '?': true, '!': true,
	'。': true, '？': true, '！': true,
}

var dialogueDashes = map[rune]bool{
	'-': true, '—': true, '―': true,
}

// Cluster is a run of consecutive cues synthesized as a single TTS request.
type Cluster struct {
	StartIdx int
	EndIdx   int
	StartMS  int
	EndMS    int
	Text     string
	Speaker  string
}

// CueIndices returns every cue index the cluster spans, inclusive.
func (c Cluster) CueIndices() []int {
	out := make([]int, 0, c.EndIdx-c.StartIdx+1)
	for i := c.StartIdx; i <= c.EndIdx; i++ {
		out = append(out, i)
	}
	return out
}

// Group partitions cues into clusters. speakers must have the same length
// as cues and holds each cue's resolved speaker name (see
// internal/speaker.Resolver). A new cluster opens whenever the speaker
// changes, the cue's text opens with a dialogue dash, or the previous cue's
// text ends with terminal punctuation.
func Group(cues cue.CueList, speakers []string) ([]Cluster, error) {
	if len(cues) == 0 {
		return nil, rerr.Wrap(rerr.ErrInputInvalid, stageCluster, opCluster,
			"cue list is empty", nil)
	}
	if len(speakers) != len(cues) {
		return nil, rerr.Wrap(rerr.ErrInputInvalid, stageCluster, opCluster,
			"speaker list length must match cue list length", nil)
	}

	var clusters []Cluster
	start := 0
	for i := 1; i <= len(cues); i++ {
		boundary := i == len(cues)
		if !boundary {
			boundary = startsNewCluster(cues[i-1].Text, speakers[i-1], cues[i].Text, speakers[i])
		}
		if boundary {
			clusters = append(clusters, buildCluster(cues, speakers, start, i-1))
			start = i
		}
	}
	return clusters, nil
}

func startsNewCluster(prevText, prevSpeaker, curText, curSpeaker string) bool {
	if curSpeaker != prevSpeaker {
		return true
	}
	if beginsWithDialogueDash(curText) {
		return true
	}
	if endsWithTerminalPunctuation(prevText) {
		return true
	}
	return false
}

func beginsWithDialogueDash(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	r := []rune(trimmed)[0]
	return dialogueDashes[r]
}

func endsWithTerminalPunctuation(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	runes := []rune(trimmed)
	r := runes[len(runes)-1]
	return terminalPunctuation[r]
}

func buildCluster(cues cue.CueList, speakers []string, start, end int) Cluster {
	parts := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		t := strings.TrimSpace(cues[i].Text)
		if t != "" {
			parts = append(parts, t)
		}
	}
	return Cluster{
		StartIdx: start,
		EndIdx:   end,
		StartMS:  cues[start].StartMS,
		EndMS:    cues[end].EndMS,
		Text:     strings.Join(parts, " "),
		Speaker:  speakers[start],
	}
}

package logging

import "strings"

// FormatSubject builds the stage/cue subject string used in console output, e.g.
// "Synthesis · Cue #42".
func FormatSubject(stage, cueIndex string) string {
	stage = strings.TrimSpace(stage)
	cueIndex = strings.TrimSpace(cueIndex)
	parts := make([]string, 0, 2)
	if stage != "" {
		var formatted string
		if len(stage) > 1 {
			formatted = strings.ToUpper(stage[:1]) + strings.ToLower(stage[1:])
		} else {
			formatted = strings.ToUpper(stage)
		}
		parts = append(parts, formatted)
	}
	if cueIndex != "" {
		parts = append(parts, "Cue #"+cueIndex)
	}
	return strings.Join(parts, " · ")
}

package speaker

import (
	"strings"

	"golang.org/x/text/width"
)

// DefaultSpeaker is the reserved speaker name cues inherit when no tag has
// ever been seen and the name a VoiceMap must always resolve.
const DefaultSpeaker = "DEFAULT"

var bracketPairs = map[rune]rune{
	'[': ']',
	'【': '】',
}

// ExtractSpeaker parses an optional leading speaker tag from cue text. A
// tag is recognised in two bracket shapes — ASCII "[...]" and full-width
// "【...】" — carrying a "Speaker:" prefix whose colon may be ASCII or
// full-width. It returns the tagged speaker name (empty if none was
// present) and the remaining text with the tag and any following
// whitespace stripped.
func ExtractSpeaker(text string) (name string, rest string) {
	trimmed := strings.TrimLeft(text, " \t")
	runes := []rune(trimmed)
	if len(runes) == 0 {
		return "", text
	}

	open := runes[0]
	closeRune, ok := bracketPairs[open]
	if !ok {
		return "", text
	}
	closeIdx := indexRune(runes[1:], closeRune)
	if closeIdx < 0 {
		return "", text
	}
	closeIdx++ // account for the slice offset above

	tag := string(runes[1:closeIdx])
	normalizedTag := width.Fold.String(tag)
	lowered := strings.ToLower(normalizedTag)
	if !strings.HasPrefix(lowered, "speaker:") {
		return "", text
	}

	colonIdx := strings.Index(normalizedTag, ":")
	if colonIdx < 0 {
		return "", text
	}
	speakerName := strings.TrimSpace(normalizedTag[colonIdx+1:])
	if speakerName == "" {
		return "", text
	}

	remainder := string(runes[closeIdx+1:])
	remainder = strings.TrimLeft(remainder, " \t")
	return speakerName, remainder
}

func indexRune(runes []rune, target rune) int {
	for i, r := range runes {
		if r == target {
			return i
		}
	}
	return -1
}

// Resolver tracks the current speaker across a cue vector with
// inherit-on-absent semantics: a cue without a recognised tag inherits the
// speaker of the most recent tagged cue, or DefaultSpeaker if none has
// appeared yet.
type Resolver struct {
	current string
}

// NewResolver returns a Resolver primed with DefaultSpeaker.
func NewResolver() *Resolver {
	return &Resolver{current: DefaultSpeaker}
}

// Resolve consumes one cue's text, updates the tracked current speaker if
// a tag is present, and returns the resolved speaker name plus the cue
// text with any tag stripped.
func (r *Resolver) Resolve(text string) (speakerName, cleanText string) {
	name, rest := ExtractSpeaker(text)
	if name != "" {
		r.current = name
	}
	return r.current, rest
}

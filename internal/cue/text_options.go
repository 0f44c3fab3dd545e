package cue

import "strings"

// StripMeta removes bracket glyphs (both ASCII and full-width) from text
// without touching their contents. The engine's PreQAHandler applies it to
// every cue's speaker-stripped text before synthesis; the other helpers in
// this file are not called by the engine.
func StripMeta(text string) string {
	replacer := strings.NewReplacer("【", "", "】", "", "[", "", "]", "")
	return replacer.Replace(text)
}

// RemoveBracketContent drops bracketed spans (ASCII parens/brackets and
// full-width brackets) entirely, including their contents. Opt-in: never
// invoked by the Rebalancer, Clusterer, or Assembler.
func RemoveBracketContent(text string) string {
	var out strings.Builder
	skip := 0
	for _, r := range text {
		switch r {
		case '(', '【', '[':
			skip++
			continue
		case ')', '】', ']':
			if skip > 0 {
				skip--
			}
			continue
		}
		if skip == 0 {
			out.WriteRune(r)
		}
	}
	return out.String()
}

func stripNoise(text string) string {
	replacer := strings.NewReplacer("*", "", "`", "", "​", "", "‌", "", "‍", "", "\xef\xbb\xbf", "")
	t := replacer.Replace(text)
	for strings.Contains(t, "  ") {
		t = strings.ReplaceAll(t, "  ", " ")
	}
	return strings.TrimSpace(t)
}

// TextOptions controls the opt-in cleanup ApplyTextOptions performs.
type TextOptions struct {
	KeepBrackets bool
	StripMetaTag bool
	StripNoise   bool
}

// ApplyTextOptions composes the opt-in cleanup transforms. It never runs
// inside the script-stage pipeline; it exists for callers preparing a
// display or publication variant of a cue's text outside the
// text-immutability gate's purview.
func ApplyTextOptions(text string, opts TextOptions) string {
	t := text
	if opts.StripNoise {
		t = stripNoise(t)
	}
	if !opts.KeepBrackets {
		t = RemoveBracketContent(t)
	}
	if opts.StripMetaTag {
		t = StripMeta(t)
	}
	return t
}

package speaker

import (
	"fmt"

	"redub/internal/rerr"
)

const (
	stageSpeaker  = "speaker_resolver"
	opVoiceLookup = "resolve_voice"
	opVoiceMap    = "voice_map_construct"
)

// VoiceMap is a total function from speaker name to a backend-specific
// voice identifier. It must carry a DEFAULT entry; constructing one
// without it is an invariant violation, since it would leave unknown and
// untagged speakers with no voice to fall back to.
type VoiceMap struct {
	entries map[string]string
}

// NewVoiceMap builds a VoiceMap from a speaker-name-to-voice-id mapping.
// Returns rerr.ErrInvariant if entries is missing the DEFAULT key.
func NewVoiceMap(entries map[string]string) (*VoiceMap, error) {
	if _, ok := entries[DefaultSpeaker]; !ok {
		return nil, rerr.WrapHint(rerr.ErrInvariant, stageSpeaker, opVoiceMap,
			"voice map missing DEFAULT entry", "voice_map_missing_default",
			"every voice map must define a DEFAULT voice", nil)
	}
	copied := make(map[string]string, len(entries))
	for k, v := range entries {
		copied[k] = v
	}
	return &VoiceMap{entries: copied}, nil
}

// Resolve returns the voice identifier for name, falling back to DEFAULT's
// voice (with warned=true) when name is unrecognised.
func (m *VoiceMap) Resolve(name string) (voiceID string, warned bool) {
	if voiceID, ok := m.entries[name]; ok {
		return voiceID, false
	}
	return m.entries[DefaultSpeaker], true
}

// Has reports whether name has an explicit entry in the map.
func (m *VoiceMap) Has(name string) bool {
	_, ok := m.entries[name]
	return ok
}

// Names returns the set of speaker names with an explicit voice entry.
func (m *VoiceMap) Names() []string {
	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	return names
}

// String renders a VoiceMap for diagnostics.
func (m *VoiceMap) String() string {
	return fmt.Sprintf("VoiceMap(%d entries)", len(m.entries))
}

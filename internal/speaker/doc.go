// Package speaker implements the Speaker Resolver: it parses an optional
// leading speaker tag off cue text, tracks the current speaker across cues
// with inherit-on-absent semantics, and maps speaker names to
// backend-specific voice identifiers via a VoiceMap.
package speaker

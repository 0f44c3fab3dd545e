package assemble

// Role classifies a synthesized segment's origin.
type Role string

const (
	// RoleSpeech is a cue whose text was synthesized.
	RoleSpeech Role = "speech"
	// RoleGap is inter-cue silence exceeding the gap threshold.
	RoleGap Role = "gap"
	// RoleBlank is a whitespace-only cue, synthesized as silence of its
	// original duration.
	RoleBlank Role = "blank"
)

// Segment is one piece of the assembled timeline.
type Segment struct {
	CueIdx       int
	OriginalMS   int
	TTSMs        int
	StretchRatio float64
	Role         Role
}

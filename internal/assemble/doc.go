// Package assemble implements the Timeline Assembler: the stage that
// stitches per-cue fitted audio (and, in Mode B, retimed video) plus
// explicit gap segments into final audio and video tracks. Mode A holds the
// video fixed and concatenates fitted audio against the original timeline;
// Mode B concatenates retimed video and natural-speed audio together and
// emits a new subtitle timeline built from cumulative cue offsets. A final
// length-parity check compares the assembled audio and video durations.
package assemble

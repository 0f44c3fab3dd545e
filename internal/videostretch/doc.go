// Package videostretch implements the Video Stretcher, used only in Mode B
// (the elastic-timeline mode): extracting each cue's source video segment
// and retiming it to match its synthesized audio's duration via ffmpeg's
// setpts filter. Retiming is skipped for segments already close to their
// target ratio, and gap and blank segments pass through extracted but
// unretimed.
package videostretch

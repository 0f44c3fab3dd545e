// Package cue implements the Cue Store: the ordered cue vector that every
// pipeline stage consumes and produces, SRT-file I/O, and the
// text-immutability gate that script-stage transforms (Rebalancer,
// Clusterer, Timeline Assembler) must pass through before their output is
// trusted.
//
// A cue is the smallest unit of timing the engine reasons about: a start
// and end offset in milliseconds plus opaque text. Nothing in this package
// interprets that text — translation, rewrite, and semantic refinement all
// live outside the core. The only thing this package asserts about text is
// that it does not change shape across a script-stage transform.
package cue

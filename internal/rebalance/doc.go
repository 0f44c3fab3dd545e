// Package rebalance implements the Rebalancer: a script-stage transform
// that moves visual duration from under-dense neighbours to over-dense
// cues without ever touching cue text. It runs up to three fixed-point
// sweeps over the cue vector and preserves the total span, ordering, and
// text-immutability invariants of its input.
package rebalance

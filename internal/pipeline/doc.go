// Package pipeline drives the Failure State Machine: Init -> PreQA ->
// Synthesis -> Fit -> Assemble -> PostQA -> Done, with any state able to
// transition to Failed(reason). PostQA is special: its findings are
// recorded on the run but never transition the run to Failed, since a
// post-flight audit reports integrity concerns rather than gating
// completion.
package pipeline

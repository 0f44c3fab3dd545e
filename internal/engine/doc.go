// Package engine wires the cue/speaker/cluster/tts/audiofit/videostretch/
// assemble/qa/mux packages into the five concrete stage.Handler
// implementations the Failure State Machine runs in sequence: PreQA,
// Synthesis, Fit, Assemble, and PostQA. State carries everything those
// stages share; each stage reads and extends it in place.
package engine

// Package gosynth implements a dataflow graph host for real-time audio
// synthesis.
//
// A Host owns a set of modules connected by typed ports. A port carries
// one of two closed buffer element kinds, Signal (a float32 sample) or
// MidiEvents (the list of MIDI events that landed on one sample), in
// blocks of BlockLen samples at a time. Every module implements
// FillBuffers as a deterministic function of its current input blocks
// and its own internal state; the host calls it only from ProcessBlock.
//
// Building a patch
//
// CreateModule registers a module under a name, using an Initializer
// that declares the module's ports on a Descriptor and returns the
// Module itself. Link and LinkValue connect an output port to an input
// port, or hold an input port constant, replacing whatever it was
// previously connected to. A link that would create a dependency cycle
// is rejected rather than accepted and left to hang the scheduler.
//
// CreateGroup, together with CreateGroupJoiningModule and
// CreateGroupInstanceModule, let a patch address K sibling module
// instances as a unit -- for example, one oscillator and one envelope
// per polyphony voice -- without naming each instance by hand.
//
// Running a patch
//
// ProcessBlock runs every module exactly once, strictly after all of its
// dependencies, using a cooperative depth-first traversal driven by a
// per-module dependency counter. Run calls ProcessBlock back to back
// until told to stop, meant to be driven from its own goroutine feeding
// a real-time audio callback that reads independently from the Host's
// AudioOutput.
package gosynth

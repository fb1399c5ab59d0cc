package gosynth

// MidiMessageKind is a coarse classification of the MIDI channel-voice and
// system messages this host cares about. Anything else arrives as
// MidiOther with its raw status/data bytes intact, so a module that does
// not care can still forward it.
type MidiMessageKind int

const (
	MidiNoteOff MidiMessageKind = iota
	MidiNoteOn
	MidiController
	MidiPitchBend
	MidiOther
)

// MidiEvent is a single, already-timestamped-to-a-sample-index MIDI
// message. The index into the block it occurred at is implicit: it is
// determined by which slot of a MidiEvents block it was pushed into.
type MidiEvent struct {
	Kind MidiMessageKind

	Channel uint8

	// Key/Velocity are valid for MidiNoteOn and MidiNoteOff.
	Key      uint8
	Velocity uint8

	// Controller/Value are valid for MidiController.
	Controller uint8
	Value      uint8

	// Bend is valid for MidiPitchBend, in the range [-1, 1].
	Bend float32

	// Raw carries the original status/data bytes for MidiOther so a
	// pass-through module can still forward it unchanged.
	Raw [3]byte
}

// MidiEvents is the list of MIDI events that occurred during a single
// sample of a block. Most slots are empty; a slot holds more than one
// event only when multiple messages land on the same sample index.
type MidiEvents []MidiEvent

package midi

import (
	"testing"

	gosynth "github.com/reidbhuntley/gosynth"
)

func TestDecodeEventNoteOn(t *testing.T) {
	ev := decodeEvent(rawEvent{status: 0x91, data1: 60, data2: 100})
	if ev.Kind != gosynth.MidiNoteOn || ev.Channel != 1 || ev.Key != 60 || ev.Velocity != 100 {
		t.Fatalf("decodeEvent(note-on) = %+v", ev)
	}
}

func TestDecodeEventNoteOnWithZeroVelocityIsNoteOff(t *testing.T) {
	ev := decodeEvent(rawEvent{status: 0x90, data1: 60, data2: 0})
	if ev.Kind != gosynth.MidiNoteOff || ev.Key != 60 {
		t.Fatalf("decodeEvent(note-on velocity 0) = %+v, want note-off", ev)
	}
}

func TestDecodeEventNoteOff(t *testing.T) {
	ev := decodeEvent(rawEvent{status: 0x82, data1: 64, data2: 10})
	if ev.Kind != gosynth.MidiNoteOff || ev.Channel != 2 || ev.Key != 64 || ev.Velocity != 10 {
		t.Fatalf("decodeEvent(note-off) = %+v", ev)
	}
}

func TestDecodeEventController(t *testing.T) {
	ev := decodeEvent(rawEvent{status: 0xb0, data1: 7, data2: 127})
	if ev.Kind != gosynth.MidiController || ev.Controller != 7 || ev.Value != 127 {
		t.Fatalf("decodeEvent(cc) = %+v", ev)
	}
}

func TestDecodeEventPitchBendCenterIsZero(t *testing.T) {
	ev := decodeEvent(rawEvent{status: 0xe0, data1: 0, data2: 0x40})
	if ev.Kind != gosynth.MidiPitchBend || ev.Bend != 0 {
		t.Fatalf("decodeEvent(center pitch bend) = %+v, want Bend 0", ev)
	}
}

func TestDecodeEventPitchBendExtremesSpanUnitRange(t *testing.T) {
	low := decodeEvent(rawEvent{status: 0xe0, data1: 0, data2: 0})
	if low.Bend != -1 {
		t.Fatalf("low bend = %v, want -1", low.Bend)
	}
	high := decodeEvent(rawEvent{status: 0xe0, data1: 0x7f, data2: 0x7f})
	if high.Bend <= 0.99 {
		t.Fatalf("high bend = %v, want close to 1", high.Bend)
	}
}

func TestDecodeEventUnknownStatusIsOther(t *testing.T) {
	ev := decodeEvent(rawEvent{status: 0xf8, data1: 1, data2: 2})
	if ev.Kind != gosynth.MidiOther || ev.Raw != [3]byte{0xf8, 1, 2} {
		t.Fatalf("decodeEvent(unknown) = %+v", ev)
	}
}

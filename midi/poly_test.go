package midi

import (
	"testing"

	gosynth "github.com/reidbhuntley/gosynth"
)

func buildPoly(t *testing.T, numVoices int) (*gosynth.Host, gosynth.ModuleIn[gosynth.MidiEvents], gosynth.ModuleVariadicOut[gosynth.MidiEvents]) {
	t.Helper()
	h, err := gosynth.NewHost(nil)
	if err != nil {
		t.Fatalf("NewHost: %v", err)
	}
	m, err := gosynth.CreateVariadicModule(h, "poly", NewPoly, struct{}{}, numVoices)
	if err != nil {
		t.Fatalf("CreateVariadicModule: %v", err)
	}
	in, err := gosynth.In[gosynth.MidiEvents](h, m, "in")
	if err != nil {
		t.Fatalf("In: %v", err)
	}
	out, err := gosynth.VariadicOut[gosynth.MidiEvents](h, m, "out")
	if err != nil {
		t.Fatalf("VariadicOut: %v", err)
	}
	return h, in, out
}

func noteOnEvent(key uint8) gosynth.MidiEvent {
	return gosynth.MidiEvent{Kind: gosynth.MidiNoteOn, Key: key, Velocity: 100}
}

func noteOffEvent(key uint8) gosynth.MidiEvent {
	return gosynth.MidiEvent{Kind: gosynth.MidiNoteOff, Key: key}
}

// voiceSink records every MIDI event it is fed into a slice reachable from
// outside the graph, so a test can inspect what a variadic output slot
// actually delivered without needing access to the host's internal module
// table.
type voiceSink struct {
	in  gosynth.InHandle[gosynth.MidiEvents]
	got *[]gosynth.MidiEvent
}

func newVoiceSink(got *[]gosynth.MidiEvent) gosynth.Initializer[struct{}] {
	return func(d *gosynth.Descriptor, _ struct{}, _ int) (gosynth.Module, error) {
		return &voiceSink{in: gosynth.WithIn[gosynth.MidiEvents](d, "in"), got: got}, nil
	}
}

func (s *voiceSink) FillBuffers(in *gosynth.BuffersIn, _ *gosynth.BuffersOut) {
	block := gosynth.GetIn(in, s.in)
	for _, events := range block {
		*s.got = append(*s.got, events...)
	}
}

func TestPolyAssignsDistinctVoicesToDistinctNotes(t *testing.T) {
	h, in, out := buildPoly(t, 2)
	gosynth.LinkValue[gosynth.MidiEvents](h, gosynth.MidiEvents{noteOnEvent(60), noteOnEvent(64)}, in)

	got := make([][]gosynth.MidiEvent, 2)
	for i := 0; i < 2; i++ {
		sm, err := gosynth.CreateModule(h, sinkName(i), newVoiceSink(&got[i]), struct{}{})
		if err != nil {
			t.Fatalf("CreateModule(sink %d): %v", i, err)
		}
		sinkIn, err := gosynth.In[gosynth.MidiEvents](h, sm, "in")
		if err != nil {
			t.Fatalf("In(sink %d): %v", i, err)
		}
		voiceOut, err := out.At(i)
		if err != nil {
			t.Fatalf("At(%d): %v", i, err)
		}
		if err := gosynth.Link[gosynth.MidiEvents](h, voiceOut, sinkIn); err != nil {
			t.Fatalf("Link(voice %d): %v", i, err)
		}
	}

	h.ProcessBlock()

	total := 0
	for i, events := range got {
		total += len(events)
		for _, ev := range events {
			if i == 0 && ev.Key != 60 {
				t.Fatalf("voice 0 got key %d, want 60", ev.Key)
			}
			if i == 1 && ev.Key != 64 {
				t.Fatalf("voice 1 got key %d, want 64", ev.Key)
			}
		}
	}
	if total != 2 {
		t.Fatalf("total events delivered = %d, want 2", total)
	}
}

func sinkName(i int) string {
	names := []string{"sink0", "sink1", "sink2", "sink3"}
	return names[i]
}

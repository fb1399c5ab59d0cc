package midi

import gosynth "github.com/reidbhuntley/gosynth"

type heldNote struct {
	key   uint8
	event gosynth.MidiEvent
}

// Poly fans a single MIDI input stream out across a fixed number of
// voices, assigning each held note its own output. When more notes are
// held than there are voices, NoteOn steals the least-recently-assigned
// voice; when a voiced note is released, its voice resurrects the most
// recently pressed note still waiting for a voice, if any.
//
// The voice count is the variadic arity the module was created with, so
// Poly is meant to be built as a group-joining module over a group of
// per-voice modules (oscillators, envelopes, ...).
type Poly struct {
	numVoices int
	notes     []heldNote // most recently pressed first
	order     []int      // voice indices, most-recently-assigned first

	midiIn    gosynth.InHandle[gosynth.MidiEvents]
	voicesOut gosynth.VariadicOutHandle[gosynth.MidiEvents]
}

// NewPoly is the Initializer for Poly. It takes no settings; its voice
// count comes from numArgs, the variadic arity it is created with.
func NewPoly(d *gosynth.Descriptor, _ struct{}, numArgs int) (gosynth.Module, error) {
	order := make([]int, numArgs)
	for i := range order {
		order[i] = i
	}
	return &Poly{
		numVoices: numArgs,
		order:     order,
		midiIn:    gosynth.WithIn[gosynth.MidiEvents](d, "in"),
		voicesOut: gosynth.WithVariadicOut[gosynth.MidiEvents](d, "out"),
	}, nil
}

func (p *Poly) FillBuffers(in *gosynth.BuffersIn, out *gosynth.BuffersOut) {
	if p.numVoices == 0 {
		return
	}

	voices := gosynth.GetVariadicOut(out, p.voicesOut)
	for _, v := range voices {
		for i := range v {
			v[i] = nil
		}
	}

	midiIn := gosynth.GetIn(in, p.midiIn)
	for i, events := range midiIn {
		for _, ev := range events {
			switch ev.Kind {
			case gosynth.MidiNoteOn:
				p.noteOn(voices, i, ev)
			case gosynth.MidiNoteOff:
				p.noteOff(voices, i, ev)
			default:
				for _, v := range voices {
					v[i] = append(v[i], ev)
				}
			}
		}
	}
}

func (p *Poly) noteOn(voices []*gosynth.Block[gosynth.MidiEvents], sample int, ev gosynth.MidiEvent) {
	for _, n := range p.notes {
		if n.key == ev.Key {
			return
		}
	}

	pos := len(p.notes)
	if pos > p.numVoices-1 {
		pos = p.numVoices - 1
	}
	voiceIdx := p.order[pos]
	p.order = append(p.order[:pos], p.order[pos+1:]...)
	p.order = append([]int{voiceIdx}, p.order...)

	voices[voiceIdx][sample] = append(voices[voiceIdx][sample], ev)
	p.notes = append([]heldNote{{key: ev.Key, event: ev}}, p.notes...)
}

func (p *Poly) noteOff(voices []*gosynth.Block[gosynth.MidiEvents], sample int, ev gosynth.MidiEvent) {
	idx := -1
	for j, n := range p.notes {
		if n.key == ev.Key {
			idx = j
			break
		}
	}
	if idx < 0 {
		return
	}
	p.notes = append(p.notes[:idx], p.notes[idx+1:]...)
	if idx >= p.numVoices {
		return
	}

	voiceIdx := p.order[idx]
	p.order = append(p.order[:idx], p.order[idx+1:]...)
	p.order = append(p.order, voiceIdx)

	resurrect := ev
	if p.numVoices-1 < len(p.notes) {
		resurrect = p.notes[p.numVoices-1].event
	}
	voices[voiceIdx][sample] = append(voices[voiceIdx][sample], resurrect)
}

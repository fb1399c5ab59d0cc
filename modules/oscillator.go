package modules

import (
	"math"

	gosynth "github.com/reidbhuntley/gosynth"
)

// OscillatorShape selects the wavetable an Oscillator is built from.
type OscillatorShape int

const (
	ShapeSine OscillatorShape = iota
	ShapeSaw
	ShapeTriangle
	ShapeSquare
)

// OscillatorSettings picks a wavetable shape and, for shapes whose table
// is sampled rather than fixed, its resolution.
type OscillatorSettings struct {
	Shape     OscillatorShape
	TableSize int
}

// Oscillator is a MIDI-driven wavetable oscillator: it tracks the most
// recently pressed note's pitch and the most recent pitch-bend message,
// and walks its wavetable at the resulting frequency every sample.
type Oscillator struct {
	velocity  uint8
	semitone  float32
	bend      float32
	frequency float32

	wavetable []float32
	tableIdx  float32

	pitchShift gosynth.InHandle[gosynth.Signal]
	velAmount  gosynth.InHandle[gosynth.Signal]
	freqMod    gosynth.InHandle[gosynth.Signal]
	midiIn     gosynth.InHandle[gosynth.MidiEvents]
	out        gosynth.OutHandle[gosynth.Signal]
}

func sineTable(n int) []float32 {
	t := make([]float32, n)
	for i := range t {
		t[i] = float32(math.Sin(2 * math.Pi * float64(i) / float64(n)))
	}
	return t
}

func sawTable(n int) []float32 {
	t := make([]float32, n)
	for i := range t {
		t[i] = float32(i) / float32(n)
	}
	return t
}

func triangleTable(n int) []float32 {
	t := make([]float32, n)
	for i := range t {
		x := float32(i) / float32(n)
		t[i] = 1.0 - 2.0*float32(math.Abs(float64(x-0.5)))
	}
	return t
}

func squareTable() []float32 {
	return []float32{-1.0, 1.0}
}

// NewOscillator is the Initializer for Oscillator.
func NewOscillator(d *gosynth.Descriptor, settings OscillatorSettings, _ int) (gosynth.Module, error) {
	var table []float32
	switch settings.Shape {
	case ShapeSine:
		table = sineTable(settings.TableSize)
	case ShapeSaw:
		table = sawTable(settings.TableSize)
	case ShapeTriangle:
		table = triangleTable(settings.TableSize)
	case ShapeSquare:
		table = squareTable()
	}

	return &Oscillator{
		wavetable:  table,
		pitchShift: gosynth.WithInDefault[gosynth.Signal](d, "pitch_shift", 1),
		velAmount:  gosynth.WithInDefault[gosynth.Signal](d, "vel_amount", 0),
		freqMod:    gosynth.WithInDefault[gosynth.Signal](d, "freq_mod", 0),
		midiIn:     gosynth.WithIn[gosynth.MidiEvents](d, "midi"),
		out:        gosynth.WithOut[gosynth.Signal](d, "out"),
	}, nil
}

func (o *Oscillator) FillBuffers(in *gosynth.BuffersIn, out *gosynth.BuffersOut) {
	pitchShift := gosynth.GetIn(in, o.pitchShift)
	velAmount := gosynth.GetIn(in, o.velAmount)
	freqMod := gosynth.GetIn(in, o.freqMod)
	midi := gosynth.GetIn(in, o.midiIn)
	res := gosynth.GetOut(out, o.out)

	n := len(o.wavetable)
	for i := range res {
		updated := false
		for _, ev := range midi[i] {
			switch ev.Kind {
			case gosynth.MidiNoteOn:
				o.velocity = ev.Velocity
				o.semitone = float32(int(ev.Key) - 69)
				o.tableIdx = 0
				updated = true
			case gosynth.MidiPitchBend:
				o.bend = ev.Bend
				updated = true
			}
		}
		if updated {
			o.frequency = float32(math.Exp2(float64((o.semitone+o.bend)/12.0))) * 440.0
		}

		idx := remEuclid(o.tableIdx+float32(freqMod[i]), float32(n))
		res[i] = gosynth.Signal(o.wavetable[int(idx)] * (1.0 + float32(velAmount[i])*(float32(o.velocity)/128.0-1.0)))

		o.tableIdx += o.frequency * float32(pitchShift[i]) * gosynth.SampleTime * float32(n)
		o.tableIdx = remEuclid(o.tableIdx, float32(n))
	}
}

func remEuclid(x, m float32) float32 {
	r := float32(math.Mod(float64(x), float64(m)))
	if r < 0 {
		r += m
	}
	return r
}

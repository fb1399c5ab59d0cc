// Package midi turns raw MIDI input into graph modules: a polled input
// device, a continuous-controller-to-signal slider, and a polyphony
// splitter that fans a single note stream out across a group of voices.
package midi

import gosynth "github.com/reidbhuntley/gosynth"

// SliderSettings maps one MIDI continuous controller onto a signal
// range.
type SliderSettings struct {
	Controller uint8
	Default    float32
	Min, Max   float32
}

// Slider tracks the most recent value of a single MIDI CC and exposes it
// as a sample-and-hold signal. The output steps to each new CC value at
// the sample it arrives on; it is not smoothed.
type Slider struct {
	settings SliderSettings
	rang     float32
	current  float32

	midiIn gosynth.InHandle[gosynth.MidiEvents]
	out    gosynth.OutHandle[gosynth.Signal]
}

// NewSlider is the Initializer for Slider.
func NewSlider(d *gosynth.Descriptor, settings SliderSettings, _ int) (gosynth.Module, error) {
	return &Slider{
		settings: settings,
		rang:     settings.Max - settings.Min,
		current:  settings.Default,
		midiIn:   gosynth.WithIn[gosynth.MidiEvents](d, "in"),
		out:      gosynth.WithOut[gosynth.Signal](d, "out"),
	}, nil
}

func (s *Slider) FillBuffers(in *gosynth.BuffersIn, out *gosynth.BuffersOut) {
	midi := gosynth.GetIn(in, s.midiIn)
	res := gosynth.GetOut(out, s.out)

	for i := range res {
		for _, ev := range midi[i] {
			if ev.Kind == gosynth.MidiController && ev.Controller == s.settings.Controller {
				s.current = float32(ev.Value)/128.0*s.rang + s.settings.Min
			}
		}
		res[i] = gosynth.Signal(s.current)
	}
}

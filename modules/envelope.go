// Package modules collects the illustrative signal processors every demo
// patch is built from: amplitude shaping, arithmetic, and a wavetable
// oscillator.
package modules

import gosynth "github.com/reidbhuntley/gosynth"

type envelopeStage int

const (
	stageSilence envelopeStage = iota
	stageAttack
	stageDecay
	stageSustain
	stageRelease
)

// EnvelopeSettings parameterizes the four stages of a standard ADSR
// envelope, all in seconds except Sustain, which is a level in [0, 1].
type EnvelopeSettings struct {
	Attack, Decay, Sustain, Release float32
}

// Envelope shapes a signal by the note-gated ADSR curve driven by a MIDI
// input: attack and decay run once per note-on, sustain holds until the
// last held note releases, and release fades from wherever the envelope
// currently sits back to silence.
type Envelope struct {
	settings EnvelopeSettings

	invAttack, invDecay, invRelease float32

	stage            envelopeStage
	timeElapsed      float32
	numNotes         int
	releaseAmplitude float32

	midiIn  gosynth.InHandle[gosynth.MidiEvents]
	signalIn gosynth.InHandle[gosynth.Signal]
	out     gosynth.OutHandle[gosynth.Signal]
}

// NewEnvelope is the Initializer for Envelope, suitable for
// gosynth.CreateModule or a group constructor.
func NewEnvelope(d *gosynth.Descriptor, settings EnvelopeSettings, _ int) (gosynth.Module, error) {
	return &Envelope{
		settings:  settings,
		invAttack: 1.0 / settings.Attack,
		invDecay:  1.0 / settings.Decay,
		invRelease: 1.0 / settings.Release,
		stage:     stageSilence,
		midiIn:    gosynth.WithIn[gosynth.MidiEvents](d, "midi"),
		signalIn:  gosynth.WithIn[gosynth.Signal](d, "in"),
		out:       gosynth.WithOut[gosynth.Signal](d, "out"),
	}, nil
}

func (e *Envelope) FillBuffers(in *gosynth.BuffersIn, out *gosynth.BuffersOut) {
	midi := gosynth.GetIn(in, e.midiIn)
	sig := gosynth.GetIn(in, e.signalIn)
	res := gosynth.GetOut(out, e.out)

	for i := range res {
		for _, ev := range midi[i] {
			switch ev.Kind {
			case gosynth.MidiNoteOn:
				e.numNotes++
				e.stage = stageAttack
				e.timeElapsed = 0
				e.releaseAmplitude = 0
			case gosynth.MidiNoteOff:
				e.numNotes--
				if e.numNotes <= 0 {
					e.numNotes = 0
					if e.stage != stageRelease && e.stage != stageSilence {
						e.stage = stageRelease
						e.timeElapsed = 0
					}
				} else {
					e.stage = stageSustain
				}
			}
		}

		e.timeElapsed += gosynth.SampleTime

		res[i] = e.step(sig[i])
	}
}

func (e *Envelope) step(in gosynth.Signal) gosynth.Signal {
	if e.stage == stageAttack {
		if e.timeElapsed >= e.settings.Attack {
			e.timeElapsed -= e.settings.Attack
			e.stage = stageDecay
		} else {
			e.releaseAmplitude = e.timeElapsed * e.invAttack
			return in * gosynth.Signal(e.releaseAmplitude)
		}
	}
	if e.stage == stageDecay {
		if e.timeElapsed >= e.settings.Decay {
			e.stage = stageSustain
		} else {
			e.releaseAmplitude = (1.0-e.settings.Sustain)*(1.0-e.timeElapsed*e.invDecay) + e.settings.Sustain
			return in * gosynth.Signal(e.releaseAmplitude)
		}
	}
	if e.stage == stageSustain {
		e.releaseAmplitude = e.settings.Sustain
		return in * gosynth.Signal(e.releaseAmplitude)
	}
	if e.stage == stageRelease {
		if e.timeElapsed >= e.settings.Release {
			e.stage = stageSilence
		} else {
			return in * gosynth.Signal(e.releaseAmplitude*(1.0-e.timeElapsed*e.invRelease))
		}
	}
	return 0
}

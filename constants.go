package gosynth

import (
	"zikichombo.org/sound"
	"zikichombo.org/sound/freq"
)

// SampleRate is the fixed sample rate this host runs at.
const SampleRate = 44100

// SampleHz expresses SampleRate using zikichombo.org/sound's own
// sample-rate type, for anything that needs to interoperate with that
// package.
var SampleHz = freq.T(SampleRate) * freq.Hertz

// MonoForm describes the audio sink's stream format the same way the
// teacher describes its own IO forms: one channel at SampleHz. AudioOutput
// and anything opening a real device against it share this value instead
// of each hardcoding the channel count and sample rate separately.
var MonoForm = sound.NewForm(SampleHz, 1)

// SampleTime is the duration, in seconds, of a single sample.
const SampleTime float32 = 1.0 / float32(SampleRate)

// BlockTime is the duration, in seconds, of one block.
const BlockTime float32 = SampleTime * float32(BlockLen)

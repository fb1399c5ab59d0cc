package gosynth

import (
	"sync"

	"zikichombo.org/sound"
)

type doubleBufferName int

const (
	bufferA doubleBufferName = iota
	bufferB
)

func (n doubleBufferName) next() doubleBufferName {
	if n == bufferA {
		return bufferB
	}
	return bufferA
}

// AudioOutput is the lock-protected double buffer sitting between the
// block scheduler and a real-time audio device callback. The scheduler
// writes one full block at a time and blocks until the reader has
// finished the buffer it is currently on; the device callback reads one
// sample at a time and
// never blocks, falling back to silence if the scheduler falls behind.
type AudioOutput struct {
	mu         sync.Mutex
	canWrite   *sync.Cond
	index      int
	nowReading doubleBufferName
	writable   bool
	outOfSamples bool

	bufferA [BlockLen]float32
	bufferB [BlockLen]float32

	form sound.Form
}

func newAudioOutput() *AudioOutput {
	o := &AudioOutput{
		nowReading:   bufferB,
		writable:     true,
		outOfSamples: true,
		form:         MonoForm,
	}
	o.canWrite = sync.NewCond(&o.mu)
	return o
}

// Form describes the sink's stream format (sample rate and channel
// count), for a device backend to open a matching hardware stream against.
func (o *AudioOutput) Form() sound.Form { return o.form }

func (o *AudioOutput) buffer(name doubleBufferName) *[BlockLen]float32 {
	if name == bufferA {
		return &o.bufferA
	}
	return &o.bufferB
}

// Write blocks until the reader has finished the buffer it is currently
// reading, then publishes data as the next one to be read.
func (o *AudioOutput) Write(data *Block[Signal]) {
	o.mu.Lock()
	for !o.writable {
		o.canWrite.Wait()
	}
	o.outOfSamples = false
	o.writable = false
	writeInto := o.nowReading.next()
	o.mu.Unlock()

	buf := o.buffer(writeInto)
	for i := range buf {
		buf[i] = float32(data[i])
	}
}

// Next returns the next sample for a real-time device callback to
// consume. It never blocks: if the scheduler has not kept up, it returns
// silence instead of stalling the audio thread.
func (o *AudioOutput) Next() float32 {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.outOfSamples {
		return 0
	}

	out := o.buffer(o.nowReading)[o.index]
	o.index++
	if o.index >= BlockLen {
		o.index = 0
		if o.writable {
			o.outOfSamples = true
		} else {
			o.nowReading = o.nowReading.next()
			o.writable = true
			o.canWrite.Signal()
		}
	}
	return out
}

// audioOutputInit wires an *AudioOutput up as the built-in audio sink
// module: a single signal input, written to the sink on every block.
func audioOutputInit(d *Descriptor, output *AudioOutput, _ int) (Module, error) {
	return &audioOutputModule{
		in:     WithIn[Signal](d, "in"),
		output: output,
	}, nil
}

type audioOutputModule struct {
	in     InHandle[Signal]
	output *AudioOutput
}

func (m *audioOutputModule) FillBuffers(in *BuffersIn, _ *BuffersOut) {
	m.output.Write(GetIn(in, m.in))
}

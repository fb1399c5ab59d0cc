package midi

import (
	"time"

	"github.com/rakyll/portmidi"

	gosynth "github.com/reidbhuntley/gosynth"
)

type rawEvent struct {
	receivedAt time.Time
	status     int64
	data1      int64
	data2      int64
}

// Input polls a system MIDI input port on its own goroutine and exposes
// the events it receives as a graph output, each placed in the sample slot
// its receive time falls in (rounded down).
type Input struct {
	stream    *portmidi.Stream
	events    <-chan rawEvent
	startTime time.Time
	queue     []rawEvent

	out gosynth.OutHandle[gosynth.MidiEvents]
}

// NewInput is the Initializer for Input; settings is the portmidi device
// ID to open.
func NewInput(d *gosynth.Descriptor, deviceID int, _ int) (gosynth.Module, error) {
	portmidi.Initialize()
	stream, err := portmidi.NewInputStream(portmidi.DeviceID(deviceID), 1024)
	if err != nil {
		return nil, err
	}
	listen := stream.Listen()
	events := make(chan rawEvent, 1024)
	go func() {
		for ev := range listen {
			events <- rawEvent{receivedAt: time.Now(), status: ev.Status, data1: ev.Data1, data2: ev.Data2}
		}
	}()
	return &Input{
		stream:    stream,
		events:    events,
		startTime: time.Now(),
		out:       gosynth.WithOut[gosynth.MidiEvents](d, "out"),
	}, nil
}

func (m *Input) FillBuffers(_ *gosynth.BuffersIn, out *gosynth.BuffersOut) {
	blockStart := time.Now()

	drain := true
	for drain {
		select {
		case ev := <-m.events:
			m.queue = append(m.queue, ev)
		default:
			drain = false
		}
	}

	buffer := gosynth.GetOut(out, m.out)
	for i := range buffer {
		buffer[i] = nil
	}

	cutoff := len(m.queue)
	for i, raw := range m.queue {
		elapsed := raw.receivedAt.Sub(m.startTime).Seconds()
		idx := int(elapsed * gosynth.SampleRate)
		if idx < 0 {
			idx = 0
		}
		if idx >= gosynth.BlockLen {
			cutoff = i
			break
		}
		buffer[idx] = append(buffer[idx], decodeEvent(raw))
	}
	m.queue = append([]rawEvent(nil), m.queue[cutoff:]...)

	m.startTime = blockStart
}

func decodeEvent(raw rawEvent) gosynth.MidiEvent {
	status := byte(raw.status)
	channel := status & 0x0f
	data1 := byte(raw.data1)
	data2 := byte(raw.data2)

	switch status & 0xf0 {
	case 0x80:
		return gosynth.MidiEvent{Kind: gosynth.MidiNoteOff, Channel: channel, Key: data1, Velocity: data2}
	case 0x90:
		if data2 == 0 {
			return gosynth.MidiEvent{Kind: gosynth.MidiNoteOff, Channel: channel, Key: data1, Velocity: data2}
		}
		return gosynth.MidiEvent{Kind: gosynth.MidiNoteOn, Channel: channel, Key: data1, Velocity: data2}
	case 0xb0:
		return gosynth.MidiEvent{Kind: gosynth.MidiController, Channel: channel, Controller: data1, Value: data2}
	case 0xe0:
		raw14 := int32(data1) | int32(data2)<<7
		return gosynth.MidiEvent{Kind: gosynth.MidiPitchBend, Channel: channel, Bend: float32(raw14-0x2000) / 0x2000}
	default:
		return gosynth.MidiEvent{Kind: gosynth.MidiOther, Channel: channel, Raw: [3]byte{status, data1, data2}}
	}
}

// Close releases the underlying portmidi stream.
func (m *Input) Close() error {
	return m.stream.Close()
}

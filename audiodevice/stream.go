// Package audiodevice opens the real output device and pulls samples
// from a gosynth.Host's audio sink into it.
package audiodevice

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	gosynth "github.com/reidbhuntley/gosynth"
)

// Stream drives a portaudio output stream from a Host's audio sink, one
// sample at a time, on the host's real-time audio thread.
type Stream struct {
	stream *portaudio.Stream
	output *gosynth.AudioOutput
}

// Open initializes portaudio and opens the default output device at the
// host's fixed sample rate and block size.
func Open(host *gosynth.Host) (*Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}

	output := host.Output()
	form := output.Form()
	if form.SampleRate() != gosynth.SampleHz {
		portaudio.Terminate()
		return nil, fmt.Errorf("audiodevice: sink form sample rate %v does not match host %v", form.SampleRate(), gosynth.SampleHz)
	}

	s := &Stream{output: output}
	stream, err := portaudio.OpenDefaultStream(0, form.Channels(), gosynth.SampleRate, gosynth.BlockLen, s.callback)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	s.stream = stream
	return s, nil
}

func (s *Stream) callback(out []float32) {
	for i := range out {
		out[i] = s.output.Next()
	}
}

// Start begins audio playback.
func (s *Stream) Start() error { return s.stream.Start() }

// Stop halts audio playback without closing the device.
func (s *Stream) Stop() error { return s.stream.Stop() }

// Close stops playback, closes the device stream, and terminates
// portaudio.
func (s *Stream) Close() error {
	if err := s.stream.Close(); err != nil {
		return err
	}
	return portaudio.Terminate()
}

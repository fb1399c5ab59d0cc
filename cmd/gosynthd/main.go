// Command gosynthd runs a small demo synth voice: a MIDI input fanned out
// across a polyphony group of oscillators and envelopes, mixed down to
// the audio output.
package main

import (
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	gosynth "github.com/reidbhuntley/gosynth"
	"github.com/reidbhuntley/gosynth/audiodevice"
	"github.com/reidbhuntley/gosynth/config"
	"github.com/reidbhuntley/gosynth/midi"
	"github.com/reidbhuntley/gosynth/modules"
)

func main() {
	cfg, err := config.Load(os.Getenv("GOSYNTHD_CONFIG"))
	if err != nil {
		charmlog.Fatal("loading config", "err", err)
	}
	apply := config.Flags(pflag.CommandLine, cfg)
	pflag.Parse()
	cfg = apply()

	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{ReportTimestamp: true})
	level, err := charmlog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warn("unrecognized log level, defaulting to info", "level", cfg.LogLevel)
		level = charmlog.InfoLevel
	}
	logger.SetLevel(level)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("gosynthd exited", "err", err)
	}
}

func run(cfg config.Config, logger *charmlog.Logger) error {
	host, err := gosynth.NewHost(logger)
	if err != nil {
		return err
	}

	if err := buildVoice(host, cfg); err != nil {
		return err
	}

	stream, err := audiodevice.Open(host)
	if err != nil {
		return err
	}
	defer stream.Close()
	if err := stream.Start(); err != nil {
		return err
	}
	defer stream.Stop()

	stop := make(chan struct{})
	go host.Run(stop)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	close(stop)
	logger.Info("shutting down")
	return nil
}

func buildVoice(host *gosynth.Host, cfg config.Config) error {
	midiIn, err := gosynth.CreateModule(host, "midi_in", midi.NewInput, cfg.MidiDevice)
	if err != nil {
		return err
	}
	midiOut, err := gosynth.Out[gosynth.MidiEvents](host, midiIn, "out")
	if err != nil {
		return err
	}

	voices, err := gosynth.CreateGroup(host, "voices", cfg.Voices, nil)
	if err != nil {
		return err
	}

	poly, err := gosynth.CreateGroupJoiningModule(host, voices, "poly", midi.NewPoly, struct{}{})
	if err != nil {
		return err
	}
	polyIn, err := gosynth.In[gosynth.MidiEvents](host, poly.Ungrouped(), "in")
	if err != nil {
		return err
	}
	if err := gosynth.Link[gosynth.MidiEvents](host, midiOut, polyIn); err != nil {
		return err
	}
	polyOut, err := gosynth.GroupJoiningOut[gosynth.MidiEvents](host, poly, "out")
	if err != nil {
		return err
	}

	shape := modules.ShapeSine
	switch cfg.Waveform {
	case "saw":
		shape = modules.ShapeSaw
	case "triangle":
		shape = modules.ShapeTriangle
	case "square":
		shape = modules.ShapeSquare
	}
	osc, err := gosynth.CreateGroupInstanceModule(host, voices, "osc", modules.NewOscillator, modules.OscillatorSettings{Shape: shape, TableSize: 2048})
	if err != nil {
		return err
	}
	oscMidiIn, err := gosynth.GroupInstanceIn[gosynth.MidiEvents](host, osc, "midi")
	if err != nil {
		return err
	}
	if err := gosynth.LinkGroup[gosynth.MidiEvents](host, polyOut, oscMidiIn); err != nil {
		return err
	}
	oscOut, err := gosynth.GroupInstanceOut[gosynth.Signal](host, osc, "out")
	if err != nil {
		return err
	}

	env, err := gosynth.CreateGroupInstanceModule(host, voices, "env", modules.NewEnvelope, modules.EnvelopeSettings{Attack: 0.01, Decay: 0.1, Sustain: 0.7, Release: 0.2})
	if err != nil {
		return err
	}
	envMidiIn, err := gosynth.GroupInstanceIn[gosynth.MidiEvents](host, env, "midi")
	if err != nil {
		return err
	}
	if err := gosynth.LinkGroup[gosynth.MidiEvents](host, polyOut, envMidiIn); err != nil {
		return err
	}
	envSignalIn, err := gosynth.GroupInstanceIn[gosynth.Signal](host, env, "in")
	if err != nil {
		return err
	}
	if err := gosynth.LinkGroup[gosynth.Signal](host, oscOut, envSignalIn); err != nil {
		return err
	}
	envOut, err := gosynth.GroupInstanceOut[gosynth.Signal](host, env, "out")
	if err != nil {
		return err
	}

	mixer, err := gosynth.CreateModule(host, "mixer", modules.NewOp, modules.OpSettings{Kind: modules.OpAdd, Inputs: cfg.Voices})
	if err != nil {
		return err
	}
	for i, voiceOut := range envOut.Handles {
		mixerIn, err := gosynth.In[gosynth.Signal](host, mixer, string(rune('a'+i)))
		if err != nil {
			return err
		}
		if err := gosynth.Link[gosynth.Signal](host, voiceOut, mixerIn); err != nil {
			return err
		}
	}

	mixerOut, err := gosynth.Out[gosynth.Signal](host, mixer, "out")
	if err != nil {
		return err
	}
	outputIn, err := gosynth.In[gosynth.Signal](host, host.OutputModule(), "in")
	if err != nil {
		return err
	}
	return gosynth.Link[gosynth.Signal](host, mixerOut, outputIn)
}

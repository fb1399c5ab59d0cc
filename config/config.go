// Package config loads gosynthd's device and patch settings from a YAML
// file, overridable by command-line flags.
package config

import (
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds everything a demo patch needs to pick a MIDI device, a
// polyphony size, and an oscillator voice.
type Config struct {
	MidiDevice int    `yaml:"midi_device"`
	Voices     int    `yaml:"voices"`
	Waveform   string `yaml:"waveform"`
	LogLevel   string `yaml:"log_level"`
}

// Default returns the configuration gosynthd runs with if no file and no
// flags override it.
func Default() Config {
	return Config{
		MidiDevice: 0,
		Voices:     8,
		Waveform:   "sine",
		LogLevel:   "info",
	}
}

// Load reads a YAML config file, falling back to Default for any field
// the file doesn't set. A missing path is not an error; it just yields
// Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Flags registers gosynthd's flags on fs, returning a function that
// applies whichever ones the user set on top of cfg.
func Flags(fs *pflag.FlagSet, cfg Config) func() Config {
	midiDevice := fs.Int("midi-device", cfg.MidiDevice, "portmidi input device id")
	voices := fs.Int("voices", cfg.Voices, "number of polyphony voices")
	waveform := fs.String("waveform", cfg.Waveform, "oscillator waveform: sine, saw, triangle, square")
	logLevel := fs.String("log-level", cfg.LogLevel, "log level: debug, info, warn, error")

	return func() Config {
		cfg.MidiDevice = *midiDevice
		cfg.Voices = *voices
		cfg.Waveform = *waveform
		cfg.LogLevel = *logLevel
		return cfg
	}
}

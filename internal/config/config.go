// Package config loads YAML configuration files shared by cmd/cli and
// cmd/server, completing the wiring the teacher's go.mod already commits to
// by listing gopkg.in/yaml.v3 as a dependency.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/landmarkfp/acousticdna/pkg/acousticdna/fingerprint"
)

// File is the on-disk shape of a config YAML file.
type File struct {
	DBPath     string  `yaml:"db_path"`
	TempDir    string  `yaml:"temp_dir"`
	SampleRate int     `yaml:"sample_rate"`
	NFFT       int     `yaml:"nfft"`
	Hop        int     `yaml:"hop"`
	PeakRadius int     `yaml:"peak_radius"`
	MinAmp     float64 `yaml:"min_amplitude"`
	FanOut     int     `yaml:"fan_out"`
	DtMax      int     `yaml:"dt_max"`
	ListenAddr string  `yaml:"listen_addr"`
}

// Load reads and parses a YAML config file at path. Zero-valued fields fall
// back to fingerprint.DefaultParams() via Params().
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &f, nil
}

// Params builds a fingerprint.Params from the file, filling unset fields
// from fingerprint.DefaultParams().
func (f *File) Params() fingerprint.Params {
	p := fingerprint.DefaultParams()
	if f == nil {
		return p
	}
	if f.SampleRate != 0 {
		p.SampleRate = f.SampleRate
	}
	if f.NFFT != 0 {
		p.NFFT = f.NFFT
	}
	if f.Hop != 0 {
		p.Hop = f.Hop
	}
	if f.PeakRadius != 0 {
		p.PeakRadius = f.PeakRadius
	}
	if f.MinAmp != 0 {
		p.MinAmplitude = f.MinAmp
	}
	if f.FanOut != 0 {
		p.FanOut = f.FanOut
	}
	if f.DtMax != 0 {
		p.DtMax = f.DtMax
	}
	return p
}

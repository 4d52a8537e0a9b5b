package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults applied by WithDefaults.
const (
	DefaultModularityResolution = 1.0
	DefaultEngine               = "mem"
)

// DefaultStatistics are reported when neither the config nor the command
// line names any.
var DefaultStatistics = []string{"n", "m", "c", "conductance", "modularity"}

// ProjectConfig holds project-level settings loaded from belinda.yml.
// Pointer fields distinguish "unset" from an explicit zero or false.
type ProjectConfig struct {
	Graph                string   `yaml:"graph,omitempty"`
	Clustering           string   `yaml:"clustering,omitempty"`
	Engine               string   `yaml:"engine,omitempty"`
	DBPath               string   `yaml:"dbPath,omitempty"`
	CPMResolution        *float64 `yaml:"cpmResolution,omitempty"`
	ModularityResolution *float64 `yaml:"modularityResolution,omitempty"`
	Overlap              bool     `yaml:"overlap,omitempty"`
	CountSharedEdgesOnce *bool    `yaml:"countSharedEdgesOnce,omitempty"`
	ZeroVolume           string   `yaml:"zeroVolume,omitempty"`
	Statistics           []string `yaml:"statistics,omitempty"`
	Parallelism          int      `yaml:"parallelism,omitempty"`
	Verbose              bool     `yaml:"verbose,omitempty"`
}

// Load attempts to read belinda.yml or belinda.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"belinda.yml", "belinda.yaml"} {
		cfg, err := LoadFile(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		return cfg, err
	}
	return &ProjectConfig{}, nil
}

// LoadFile reads the config at path. Unlike Load, a missing file is an
// error.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

// WithDefaults returns a copy with every unset field filled in.
func (c ProjectConfig) WithDefaults() *ProjectConfig {
	if c.Engine == "" {
		c.Engine = DefaultEngine
	}
	if c.ModularityResolution == nil {
		r := DefaultModularityResolution
		c.ModularityResolution = &r
	}
	if c.CountSharedEdgesOnce == nil {
		once := true
		c.CountSharedEdgesOnce = &once
	}
	if c.ZeroVolume == "" {
		c.ZeroVolume = "null"
	}
	if len(c.Statistics) == 0 {
		c.Statistics = append([]string(nil), DefaultStatistics...)
	}
	return &c
}

// Validate checks the values that can be checked without touching files.
func (c *ProjectConfig) Validate() error {
	switch c.Engine {
	case "", "mem", "kuzu":
	default:
		return fmt.Errorf("config: unknown engine %q (want mem or kuzu)", c.Engine)
	}
	switch c.ZeroVolume {
	case "", "null", "error":
	default:
		return fmt.Errorf("config: unknown zeroVolume %q (want null or error)", c.ZeroVolume)
	}
	if c.CPMResolution != nil && *c.CPMResolution < 0 {
		return fmt.Errorf("config: cpmResolution must not be negative, got %g", *c.CPMResolution)
	}
	if c.ModularityResolution != nil && *c.ModularityResolution <= 0 {
		return fmt.Errorf("config: modularityResolution must be positive, got %g", *c.ModularityResolution)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("config: parallelism must not be negative, got %d", c.Parallelism)
	}
	return nil
}

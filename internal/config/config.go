// Package config loads predsim settings from a YAML file and the environment.
// Command-line flags are applied on top by the caller.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	"predsim/internal/output"
	"predsim/internal/params"
	"predsim/internal/seqgen"
)

// Config holds run-wide settings.
type Config struct {
	// SeqGen configures the external simulator.
	SeqGen SeqGenConfig `yaml:"seqgen"`

	// Output selects the alignment format written to stdout.
	Output OutputConfig `yaml:"output"`

	// Jobs is the number of concurrent simulator calls (1 = serial, 0 = one per CPU).
	Jobs int `yaml:"jobs"`

	// Logging controls stderr verbosity.
	Logging LoggingConfig `yaml:"logging"`
}

// SeqGenConfig configures Seq-Gen invocations.
type SeqGenConfig struct {
	// Path is the executable, looked up on PATH when not absolute.
	Path string `yaml:"path"`

	// Length is the simulated sequence length.
	Length int `yaml:"length"`

	// GammaCats is the number of discrete gamma categories (0 = continuous).
	GammaCats int `yaml:"gamma_cats"`

	// Freqs, when set, are the A, C, G, T frequencies used for every replicate
	// instead of the sample's pi(X) columns.
	Freqs []float64 `yaml:"freqs"`
}

// OutputConfig configures stdout.
type OutputConfig struct {
	Format string `yaml:"format"` // nexus | phylip | jsonl
}

// LoggingConfig configures the stderr logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // info | debug | trace | warn | error
	Quiet bool   `yaml:"quiet"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		SeqGen: SeqGenConfig{
			Path:   seqgen.DefaultPath,
			Length: 1000,
		},
		Output:  OutputConfig{Format: output.FormatNexus},
		Jobs:    1,
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load returns defaults overlaid with path (if non-empty) and then PREDSIM_* variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads a YAML file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if c.SeqGen.Length <= 0 {
		return fmt.Errorf("sequence length must be positive, got %d", c.SeqGen.Length)
	}
	if c.SeqGen.GammaCats < 0 {
		return fmt.Errorf("gamma categories must be ≥ 0, got %d", c.SeqGen.GammaCats)
	}
	if c.SeqGen.Freqs != nil {
		if err := params.CheckFreqs(c.SeqGen.Freqs); err != nil {
			return err
		}
	}
	if c.SeqGen.Path == "" {
		return fmt.Errorf("seq-gen path must not be empty")
	}
	if !slices.Contains(output.Formats, c.Output.Format) {
		return fmt.Errorf("invalid output format %q (valid: %v)", c.Output.Format, output.Formats)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must be ≥ 0, got %d", c.Jobs)
	}
	return nil
}

// applyEnvOverrides applies PREDSIM_* environment variables.
func applyEnvOverrides(c *Config) error {
	if v := os.Getenv("PREDSIM_SEQGEN_PATH"); v != "" {
		c.SeqGen.Path = v
	}
	if v := os.Getenv("PREDSIM_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PREDSIM_OUTPUT_FORMAT"); v != "" {
		c.Output.Format = v
	}
	if v := os.Getenv("PREDSIM_JOBS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PREDSIM_JOBS=%q: %w", v, err)
		}
		c.Jobs = n
	}
	return nil
}

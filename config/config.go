// Package config loads matbench run configuration from TOML.
//
// A configuration file looks like:
//
//	language    = "Go"
//	sizes       = [128, 256, 512, 1024]
//	repetitions = 5
//	seed        = 42
//	output      = "results/benchmark_go.csv"
//	probe       = "rss"
//
// Missing keys keep their defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/weiihann/matbench/harness"
)

// ErrInvalidConfig is returned when a loaded configuration fails
// validation.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the on-disk run configuration.
type Config struct {
	Language    string `toml:"language"`
	Sizes       []int  `toml:"sizes"`
	Repetitions int    `toml:"repetitions"`
	Seed        int64  `toml:"seed"`
	Output      string `toml:"output"`
	// Probe selects the memory probe: "rss" or "maxrss".
	Probe string `toml:"probe"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Language:    harness.DefaultLanguage,
		Sizes:       harness.DefaultSizes(),
		Repetitions: harness.DefaultRepetitions,
		Seed:        harness.DefaultSeed,
		Output:      harness.DefaultOutputPath,
		Probe:       harness.ProbeRSS,
	}
}

// Load decodes the TOML file at path over the defaults and validates the
// result.
func Load(path string) (Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}

		return Config{}, fmt.Errorf("%w: unknown keys in %s: %s",
			ErrInvalidConfig, path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := c.Harness().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	switch c.Probe {
	case harness.ProbeRSS, harness.ProbeMaxRSS:
	default:
		return fmt.Errorf("%w: unknown probe %q", ErrInvalidConfig, c.Probe)
	}

	return nil
}

// Harness converts the configuration to harness parameters.
func (c Config) Harness() harness.Config {
	return harness.Config{
		Language:    c.Language,
		Sizes:       c.Sizes,
		Repetitions: c.Repetitions,
		Seed:        c.Seed,
		OutputPath:  c.Output,
	}
}

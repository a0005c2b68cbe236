// Package config defines jsonql.Engine's tunables, loaded either by
// constructing a Config literal or from YAML, mirroring how the teacher's
// sqle.Config is built up by callers (engine.go) rather than parsed from a
// single fixed source.
package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// DefaultEpsilon is the §4.2 absolute/relative comparison epsilon used when
// a Config does not override it.
const DefaultEpsilon = 1e-9

// Config holds the engine's runtime tunables.
type Config struct {
	// MaxResultRows caps the number of rows a query may return after LIMIT
	// is applied; 0 means unbounded.
	MaxResultRows int `yaml:"max_result_rows"`

	// EpsilonAbs/EpsilonRel are the absolute+relative tolerance used when
	// comparing two numeric literals for equality (spec §4.2).
	EpsilonAbs float64 `yaml:"epsilon_abs"`
	EpsilonRel float64 `yaml:"epsilon_rel"`
}

// Default returns a Config with the spec's baseline tolerances and no
// result-row cap.
func Default() Config {
	return Config{
		MaxResultRows: 0,
		EpsilonAbs:    DefaultEpsilon,
		EpsilonRel:    DefaultEpsilon,
	}
}

// LoadYAML reads a Config from a YAML file, filling any unset epsilon
// fields with the spec default.
func LoadYAML(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.EpsilonAbs == 0 {
		cfg.EpsilonAbs = DefaultEpsilon
	}
	if cfg.EpsilonRel == 0 {
		cfg.EpsilonRel = DefaultEpsilon
	}
	return cfg, nil
}

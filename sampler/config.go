package sampler

import (
	"fmt"
	"math"
)

// HistoryMode selects which positions feed the momentum term
type HistoryMode string

// History modes
const (
	// Realized uses the positions the chain actually occupied (accepted or
	// repeated). This is the default.
	Realized HistoryMode = "realized"
	// Proposed uses the proposals themselves, accepted or not.
	Proposed HistoryMode = "proposed"
)

// DefaultMomentum is the inertia coefficient applied to the last move
const DefaultMomentum = 0.5

// Config holds everything a momentum sampler run needs besides its data,
// model and random source.
type Config struct {
	Steps       int         `yaml:"steps"`
	SigmaA      float64     `yaml:"sigma_a"`
	SigmaB      float64     `yaml:"sigma_b"`
	Seed        int64       `yaml:"seed"`
	InitialA    float64     `yaml:"initial_a"`
	InitialB    float64     `yaml:"initial_b"`
	BurnIn      int         `yaml:"burn_in"`
	Momentum    float64     `yaml:"momentum"`
	NoMomentum  bool        `yaml:"no_momentum"`
	HistoryMode HistoryMode `yaml:"history"`
}

// DefaultConfig returns a config with the default momentum and history mode.
// The zero values of Momentum and HistoryMode also select these defaults;
// set NoMomentum for a plain random-walk sampler.
func DefaultConfig() Config {
	return Config{
		Steps:       5000,
		SigmaA:      0.1,
		SigmaB:      0.1,
		Seed:        42,
		BurnIn:      0,
		Momentum:    DefaultMomentum,
		HistoryMode: Realized,
	}
}

// ConfigurationError is returned for any sampler setup that can not run
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error // underlying cause, if any
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid sampler configuration: %s: %s", e.Field, e.Reason)
}

// Unwrap gives errors.As access to the underlying cause
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configErr(field string, format string, args ...interface{}) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Check returns a *ConfigurationError if there is a problem with the config
func (c Config) Check() error {
	if c.Steps <= 0 {
		return configErr("steps", "must be > 0, found %d", c.Steps)
	}
	if !(c.SigmaA > 0) || math.IsInf(c.SigmaA, 0) {
		return configErr("sigma_a", "must be finite and > 0, found %v", c.SigmaA)
	}
	if !(c.SigmaB > 0) || math.IsInf(c.SigmaB, 0) {
		return configErr("sigma_b", "must be finite and > 0, found %v", c.SigmaB)
	}
	if math.IsNaN(c.InitialA) || math.IsInf(c.InitialA, 0) {
		return configErr("initial_a", "must be finite, found %v", c.InitialA)
	}
	if math.IsNaN(c.InitialB) || math.IsInf(c.InitialB, 0) {
		return configErr("initial_b", "must be finite, found %v", c.InitialB)
	}
	if c.BurnIn < 0 || c.BurnIn > c.Steps {
		return configErr("burn_in", "must be in [0, %d], found %d", c.Steps, c.BurnIn)
	}
	if !(c.Momentum >= 0 && c.Momentum < 1) {
		return configErr("momentum", "must be in [0, 1), found %v", c.Momentum)
	}
	switch c.HistoryMode {
	case "", Realized, Proposed:
	default:
		return configErr("history", "unknown mode %q", c.HistoryMode)
	}

	return nil
}

// momentum returns the effective coefficient: zero when NoMomentum is set,
// DefaultMomentum when Momentum was left at zero
func (c Config) momentum() float64 {
	switch {
	case c.NoMomentum:
		return 0
	case c.Momentum == 0:
		return DefaultMomentum
	}
	return c.Momentum
}

// history returns the effective mode, mapping the empty string to Realized
func (c Config) history() HistoryMode {
	if c.HistoryMode == "" {
		return Realized
	}
	return c.HistoryMode
}

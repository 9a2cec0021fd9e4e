// Package config loads the YAML configuration of the collision host.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/ccd/internal/core/observability/log"
	"github.com/zeusync/ccd/internal/core/systems/collision"
	"github.com/zeusync/ccd/internal/core/systems/physics"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Log        log.Config          `json:"log" yaml:"log"`
	Swept      physics.SweptConfig `json:"swept" yaml:"swept"`
	Scheduler  collision.Config    `json:"scheduler" yaml:"scheduler"`
	Debug      DebugConfig         `json:"debug" yaml:"debug"`
	Simulation SimulationConfig    `json:"simulation" yaml:"simulation"`
}

// DebugConfig controls the inspect feed and where debug-view preferences are
// stored.
type DebugConfig struct {
	AppName     string `json:"app_name" yaml:"app_name"`
	Persist     bool   `json:"persist" yaml:"persist"`
	FeedEnabled bool   `json:"feed_enabled" yaml:"feed_enabled"`
	FeedAddress string `json:"feed_address" yaml:"feed_address"`
}

type SimulationConfig struct {
	TickRate int `json:"tick_rate" yaml:"tick_rate"`
	// Ticks stops the run after that many steps; 0 runs until interrupted.
	Ticks int `json:"ticks" yaml:"ticks"`
}

func Default() Config {
	return Config{
		Log:       log.Config{Level: "info"},
		Swept:     physics.DefaultSweptConfig(),
		Scheduler: collision.DefaultConfig(),
		Debug: DebugConfig{
			AppName:     "ccdsim",
			FeedAddress: "127.0.0.1:8089",
		},
		Simulation: SimulationConfig{TickRate: 60},
	}
}

// Load reads and validates the file at path. Keys missing from the file keep
// their defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := LoadYAML(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadYAML decodes a config over the defaults and validates it. Unknown keys
// are rejected; an empty document yields the defaults.
func LoadYAML(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}
	if err := c.Swept.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("swept: %w", err))
	}
	if err := c.Scheduler.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Debug.AppName == "" {
		errs = append(errs, errors.New("debug: app_name is required"))
	}
	if c.Debug.FeedEnabled && c.Debug.FeedAddress == "" {
		errs = append(errs, errors.New("debug: feed_address is required when the feed is enabled"))
	}
	if c.Simulation.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("simulation: tick_rate must be positive, got %d", c.Simulation.TickRate))
	}
	if c.Simulation.Ticks < 0 {
		errs = append(errs, fmt.Errorf("simulation: ticks must not be negative, got %d", c.Simulation.Ticks))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

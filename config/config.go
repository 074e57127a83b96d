// Package config loads runtime tuning from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/delaneyj/framesignal/reactive"
	"gopkg.in/yaml.v3"
)

// Config is the file layout. Keys left out of a file keep their defaults.
//
//	scheduler:
//	  normal_budget_ms: 6
//	  low_force_every_n_frames: 4
//	max_flush_runs: 50000
//	frame_interval_ms: 8.333
type Config struct {
	Scheduler       reactive.SchedulerConfig `yaml:"scheduler"`
	MaxFlushRuns    int                      `yaml:"max_flush_runs"`
	FrameIntervalMs float64                  `yaml:"frame_interval_ms"`
}

func Default() Config {
	return Config{
		Scheduler:       reactive.DefaultSchedulerConfig(),
		MaxFlushRuns:    100_000,
		FrameIntervalMs: 1000.0 / 60,
	}
}

// Parse merges b over Default and validates the result. Unknown keys are
// rejected so a misspelt budget does not silently fall back to its default.
func Parse(b []byte) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	c, err := Parse(b)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c Config) Validate() error {
	errs := []error{c.Scheduler.Validate()}
	if c.MaxFlushRuns < 1 {
		errs = append(errs, fmt.Errorf("max_flush_runs must be at least 1, got %d", c.MaxFlushRuns))
	}
	if c.FrameIntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("frame_interval_ms must be positive, got %v", c.FrameIntervalMs))
	}
	return errors.Join(errs...)
}

// Options applies c to a new ReactiveSystem.
func (c Config) Options() []reactive.Option {
	return []reactive.Option{
		reactive.WithSchedulerConfig(c.Scheduler),
		reactive.WithMaxFlushRuns(c.MaxFlushRuns),
	}
}

func (c Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMs * float64(time.Millisecond))
}

func (c Config) Encode() ([]byte, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return b, nil
}

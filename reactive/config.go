package reactive

import (
	"errors"
	"fmt"
)

// SchedulerConfig holds the frame loop tuning. Durations are milliseconds.
type SchedulerConfig struct {
	TargetFrameMs float64 `yaml:"target_frame_ms"`

	NormalBudgetMs float64 `yaml:"normal_budget_ms"`
	NormalMinMs    float64 `yaml:"normal_min_ms"`
	NormalMaxMs    float64 `yaml:"normal_max_ms"`
	NormalStepMs   float64 `yaml:"normal_step_ms"`

	LowBudgetMs float64 `yaml:"low_budget_ms"`
	LowMinMs    float64 `yaml:"low_min_ms"`
	LowMaxMs    float64 `yaml:"low_max_ms"`
	LowStepMs   float64 `yaml:"low_step_ms"`

	// ToleranceMs is how far the frame average may drift from the target
	// before budgets move.
	ToleranceMs float64 `yaml:"tolerance_ms"`
	EWMAAlpha   float64 `yaml:"ewma_alpha"`

	ChunkSize            int `yaml:"chunk_size"`
	HighBurstLimit       int `yaml:"high_burst_limit"`
	LowForceEveryNFrames int `yaml:"low_force_every_n_frames"`
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		TargetFrameMs: 16.6,

		NormalBudgetMs: 7,
		NormalMinMs:    3,
		NormalMaxMs:    10,
		NormalStepMs:   0.8,

		LowBudgetMs: 3.5,
		LowMinMs:    1,
		LowMaxMs:    6,
		LowStepMs:   0.4,

		ToleranceMs: 1,
		EWMAAlpha:   0.12,

		ChunkSize:            8,
		HighBurstLimit:       2,
		LowForceEveryNFrames: 6,
	}
}

func (c SchedulerConfig) Validate() error {
	var errs []error
	if c.TargetFrameMs <= 0 {
		errs = append(errs, fmt.Errorf("target_frame_ms must be positive, got %v", c.TargetFrameMs))
	}
	if c.NormalMinMs < 0 || c.NormalMinMs > c.NormalMaxMs {
		errs = append(errs, fmt.Errorf("normal budget range [%v,%v] is invalid", c.NormalMinMs, c.NormalMaxMs))
	}
	if c.NormalBudgetMs < c.NormalMinMs || c.NormalBudgetMs > c.NormalMaxMs {
		errs = append(errs, fmt.Errorf("normal_budget_ms %v outside [%v,%v]", c.NormalBudgetMs, c.NormalMinMs, c.NormalMaxMs))
	}
	if c.LowMinMs < 0 || c.LowMinMs > c.LowMaxMs {
		errs = append(errs, fmt.Errorf("low budget range [%v,%v] is invalid", c.LowMinMs, c.LowMaxMs))
	}
	if c.LowBudgetMs < c.LowMinMs || c.LowBudgetMs > c.LowMaxMs {
		errs = append(errs, fmt.Errorf("low_budget_ms %v outside [%v,%v]", c.LowBudgetMs, c.LowMinMs, c.LowMaxMs))
	}
	if c.EWMAAlpha <= 0 || c.EWMAAlpha > 1 {
		errs = append(errs, fmt.Errorf("ewma_alpha must be in (0,1], got %v", c.EWMAAlpha))
	}
	if c.ChunkSize < 1 {
		errs = append(errs, fmt.Errorf("chunk_size must be at least 1, got %d", c.ChunkSize))
	}
	if c.HighBurstLimit < 0 {
		errs = append(errs, fmt.Errorf("high_burst_limit must not be negative, got %d", c.HighBurstLimit))
	}
	if c.LowForceEveryNFrames < 1 {
		errs = append(errs, fmt.Errorf("low_force_every_n_frames must be at least 1, got %d", c.LowForceEveryNFrames))
	}
	return errors.Join(errs...)
}

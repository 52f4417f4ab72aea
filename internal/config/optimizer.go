package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	optimizerLookbackDaysEnv = "OPTIMIZER_LOOKBACK_DAYS"
	optimizerMaxSamplesEnv   = "OPTIMIZER_MAX_SAMPLES"
	optimizerTimeBudgetEnv   = "OPTIMIZER_TIME_BUDGET"
	optimizerBudgetBufferEnv = "OPTIMIZER_BUDGET_BUFFER"

	defaultLookbackDays = 90
	defaultMaxSamples   = 500
	defaultTimeBudget   = 15 * time.Minute
	defaultBudgetBuffer = 2 * time.Minute
)

type OptimizerConfig struct {
	LookbackDays int
	MaxSamples   int
	// TimeBudget is the wall-clock allowance of one batch run.
	TimeBudget time.Duration
	// BudgetBuffer is the headroom kept before TimeBudget; no cohort starts inside it.
	BudgetBuffer time.Duration
}

func LoadOptimizerConfig() (*OptimizerConfig, error) {
	lookback, err := positiveIntEnv(optimizerLookbackDaysEnv, defaultLookbackDays)
	if err != nil {
		return nil, err
	}

	maxSamples, err := positiveIntEnv(optimizerMaxSamplesEnv, defaultMaxSamples)
	if err != nil {
		return nil, err
	}

	budget, err := durationEnv(optimizerTimeBudgetEnv, defaultTimeBudget)
	if err != nil {
		return nil, err
	}

	buffer, err := durationEnv(optimizerBudgetBufferEnv, defaultBudgetBuffer)
	if err != nil {
		return nil, err
	}

	return &OptimizerConfig{
		LookbackDays: lookback,
		MaxSamples:   maxSamples,
		TimeBudget:   budget,
		BudgetBuffer: buffer,
	}, nil
}

// DefaultOptimizerConfig returns the configuration used when no overrides are set.
func DefaultOptimizerConfig() *OptimizerConfig {
	return &OptimizerConfig{
		LookbackDays: defaultLookbackDays,
		MaxSamples:   defaultMaxSamples,
		TimeBudget:   defaultTimeBudget,
		BudgetBuffer: defaultBudgetBuffer,
	}
}

func (c *OptimizerConfig) Lookback() time.Duration {
	return time.Duration(c.LookbackDays) * 24 * time.Hour
}

func (c *OptimizerConfig) Validate() error {
	if c.BudgetBuffer >= c.TimeBudget {
		return ErrInvalidBudget
	}
	return nil
}

func positiveIntEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidNumber, key, raw)
	}
	return parsed, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidDuration, key, raw)
	}
	return parsed, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	breakerMinRequestsEnv  = "ENGAGEMENT_BREAKER_MIN_REQUESTS"
	breakerFailureRatioEnv = "ENGAGEMENT_BREAKER_FAILURE_RATIO"
	breakerTimeoutEnv      = "ENGAGEMENT_BREAKER_TIMEOUT"

	defaultBreakerMinRequests  = 10
	defaultBreakerFailureRatio = 0.6
	defaultBreakerTimeout      = 2 * time.Minute
)

// BreakerConfig controls the circuit breaker in front of the engagement source.
type BreakerConfig struct {
	MinRequests  uint32
	FailureRatio float64
	Timeout      time.Duration
}

func LoadBreakerConfig() (*BreakerConfig, error) {
	minRequests, err := positiveIntEnv(breakerMinRequestsEnv, defaultBreakerMinRequests)
	if err != nil {
		return nil, err
	}

	ratio := defaultBreakerFailureRatio
	if raw := os.Getenv(breakerFailureRatioEnv); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidNumber, breakerFailureRatioEnv, raw)
		}
		ratio = parsed
	}

	timeout, err := durationEnv(breakerTimeoutEnv, defaultBreakerTimeout)
	if err != nil {
		return nil, err
	}

	return &BreakerConfig{
		MinRequests:  uint32(minRequests),
		FailureRatio: ratio,
		Timeout:      timeout,
	}, nil
}

func (c *BreakerConfig) Validate() error {
	if c.FailureRatio <= 0 || c.FailureRatio > 1 {
		return fmt.Errorf("%w: %s must be in (0, 1]", ErrInvalidNumber, breakerFailureRatioEnv)
	}
	return nil
}

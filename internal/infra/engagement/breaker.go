package engagement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/sngor/bayon-coagent-sub013/internal/config"
	"github.com/sngor/bayon-coagent-sub013/internal/domain"
)

// BreakerRepository guards an engagement repository with a circuit breaker.
// While the circuit is open every call fails fast with ErrSourceUnavailable;
// the caller records that as a cohort failure and moves on.
type BreakerRepository struct {
	next    domain.EngagementRepository
	samples *gobreaker.CircuitBreaker[[]domain.EngagementSample]
	users   *gobreaker.CircuitBreaker[[]string]
}

func NewBreakerRepository(next domain.EngagementRepository, cfg *config.BreakerConfig) *BreakerRepository {
	return &BreakerRepository{
		next:    next,
		samples: gobreaker.NewCircuitBreaker[[]domain.EngagementSample](breakerSettings("engagement-samples", cfg)),
		users:   gobreaker.NewCircuitBreaker[[]string](breakerSettings("engagement-users", cfg)),
	}
}

func breakerSettings(name string, cfg *config.BreakerConfig) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
		// Cancellation does not count as a source failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("engagement source circuit state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}
}

func (b *BreakerRepository) QuerySamples(ctx context.Context, query domain.SampleQuery) ([]domain.EngagementSample, error) {
	samples, err := b.samples.Execute(func() ([]domain.EngagementSample, error) {
		return b.next.QuerySamples(ctx, query)
	})
	return samples, breakerError(err)
}

func (b *BreakerRepository) ListUserIDs(ctx context.Context, limit int) ([]string, error) {
	ids, err := b.users.Execute(func() ([]string, error) {
		return b.next.ListUserIDs(ctx, limit)
	})
	return ids, breakerError(err)
}

func (b *BreakerRepository) State() gobreaker.State {
	return b.samples.State()
}

func breakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return err
}

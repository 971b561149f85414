package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	apperrors "moodgraph/backend/pkg/errors"
	"moodgraph/backend/pkg/logger"
)

// BreakerConfig holds circuit breaker settings for the generation capability
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32        // consecutive failures before opening
	OpenDuration     time.Duration // how long to stay open before probing
	HalfOpenRequests uint32
}

// DefaultBreakerConfig returns the settings used when nothing is configured
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		OpenDuration:     30 * time.Second,
		HalfOpenRequests: 1,
	}
}

// BreakerGenerator fails fast while the wrapped capability keeps failing
type BreakerGenerator struct {
	next Generator
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerGenerator wraps next with a circuit breaker
func NewBreakerGenerator(next Generator, config BreakerConfig) *BreakerGenerator {
	log := logger.Named("breaker")
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5
	}
	if config.HalfOpenRequests == 0 {
		config.HalfOpenRequests = 1
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.HalfOpenRequests,
		Timeout:     config.OpenDuration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up is not the capability's fault
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerGenerator{next: next, cb: cb}
}

// Generate implements Generator
func (b *BreakerGenerator) Generate(ctx context.Context, systemPrompt string, turns []Turn) (*Response, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Generate(ctx, systemPrompt, turns)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperrors.NewGenerationUnavailable("circuit open", err)
		}
		return nil, err
	}
	return out.(*Response), nil
}

// State exposes the breaker state for health reporting
func (b *BreakerGenerator) State() string {
	return b.cb.State().String()
}

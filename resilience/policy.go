// Package resilience wraps outbound API calls with a retry policy and a
// circuit breaker, so a flapping upstream degrades lookups instead of
// stalling every caller.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/medtrack/medication-api/metrics"
)

// Config tunes one resilience policy.
type Config struct {
	// Name identifies the guarded API in logs and metrics.
	Name string
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64
	// InitialInterval seeds the exponential backoff between retries.
	InitialInterval time.Duration
	// FailureThreshold is the consecutive failure count that opens the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// DefaultConfig returns settings suited to the public drug data APIs.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRetries:       2,
		InitialInterval:  200 * time.Millisecond,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// Policy is a retry-inside-breaker execution wrapper.
type Policy struct {
	name    string
	cfg     Config
	breaker *gobreaker.CircuitBreaker
}

// New builds a Policy from cfg.
func New(cfg Config) *Policy {
	p := &Policy{name: cfg.Name, cfg: cfg}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				"api", name, "from", from.String(), "to", to.String())
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	}
	p.breaker = gobreaker.NewCircuitBreaker(settings)
	metrics.BreakerState.WithLabelValues(cfg.Name).Set(stateValue(gobreaker.StateClosed))

	return p
}

// Do runs op through the breaker, retrying transient failures with
// exponential backoff. Context cancellation stops retries immediately.
func (p *Policy) Do(ctx context.Context, op func() error) error {
	_, err := p.breaker.Execute(func() (any, error) {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = p.cfg.InitialInterval
		policy := backoff.WithContext(backoff.WithMaxRetries(bo, p.cfg.MaxRetries), ctx)

		return nil, backoff.Retry(func() error {
			err := op()
			if err == nil {
				return nil
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return backoff.Permanent(err)
			}
			return err
		}, policy)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		slog.Warn("circuit open, request rejected", "api", p.name)
	}
	return err
}

// State returns the current breaker state.
func (p *Policy) State() gobreaker.State { return p.breaker.State() }

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return 0
}

package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MichalMitros/marketguard/internal/resale"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RetryPolicy describes retrying of comp fetches.
type RetryPolicy struct {
	// MaxAttempts is total number of attempts, at least one attempt is always made.
	MaxAttempts int
	// BaseDelay is delay after the first failed attempt, it grows linearly with attempts.
	BaseDelay time.Duration
	// Timeout limits every single attempt, zero means no limit.
	Timeout time.Duration
	// MaxDelay caps delay requested by the server with Retry-After, zero means DefaultMaxDelay.
	MaxDelay time.Duration
}

// DefaultMaxDelay is the longest Retry-After honoured when policy doesn't set MaxDelay.
const DefaultMaxDelay = 30 * time.Second

// Backoff returns delay after failed attempt (starting from 1).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(attempt)
}

// Delay returns delay after failed attempt, at least backoff and at most MaxDelay of retryAfter.
func (p RetryPolicy) Delay(attempt int, retryAfter time.Duration) time.Duration {
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	return max(p.Backoff(attempt), min(retryAfter, maxDelay))
}

// Retrying retries failed fetches of underlying source.
type Retrying struct {
	source resale.Source
	policy RetryPolicy
	logger *zerolog.Logger
}

// NewRetrying returns new Retrying source.
func NewRetrying(source resale.Source, policy RetryPolicy, logger *zerolog.Logger) *Retrying {
	return &Retrying{
		source: source,
		policy: policy,
		logger: logger,
	}
}

// FetchRecentSales fetches recent sales retrying failures with linear backoff.
// ErrSourceNotConfigured, permanent http statuses and context cancellation are not retried.
func (r *Retrying) FetchRecentSales(ctx context.Context, query string, maxResults int) ([]decimal.Decimal, error) {
	attempts := max(r.policy.MaxAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		prices, err := r.attempt(ctx, query, maxResults)
		if err == nil {
			return prices, nil
		}
		lastErr = err

		if !retryable(err) || ctx.Err() != nil || attempt == attempts {
			break
		}

		var retryAfter time.Duration
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			retryAfter = statusErr.RetryAfter
		}
		delay := r.policy.Delay(attempt, retryAfter)
		r.logger.Debug().
			Err(err).
			Str("query", query).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("fetching recent sales failed, retrying")

		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("can't fetch recent sales after %d attempts: %w", attempts, lastErr)
}

func (r *Retrying) attempt(ctx context.Context, query string, maxResults int) ([]decimal.Decimal, error) {
	if r.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.policy.Timeout)
		defer cancel()
	}
	return r.source.FetchRecentSales(ctx, query, maxResults)
}

func retryable(err error) bool {
	if errors.Is(err, ErrSourceNotConfigured) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	return true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

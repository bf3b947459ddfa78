package resale

import (
	"context"
	"time"

	"github.com/MichalMitros/marketguard/internal/normalizer"
	"github.com/MichalMitros/marketguard/internal/platform/models"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

//go:generate mockery --name Store --filename store.go
//go:generate mockery --name Source --filename source.go

// Defaults of Cache.
const (
	DefaultTTL        = 24 * time.Hour
	DefaultMaxResults = 15
)

// Outcome describes how Lookup obtained the comp.
type Outcome string

// Lookup outcomes.
const (
	// OutcomeFresh means cached comp was within freshness window.
	OutcomeFresh Outcome = "fresh"
	// OutcomeRefreshed means comp was fetched from source and stored.
	OutcomeRefreshed Outcome = "refreshed"
	// OutcomeStaleFallback means source failed and stale cached comp was returned.
	OutcomeStaleFallback Outcome = "stale-fallback"
	// OutcomeUnavailable means source failed and there was nothing cached.
	OutcomeUnavailable Outcome = "unavailable"
)

// Store persists comps by cache key.
type Store interface {
	// Get returns comp stored under key or nil when there is none.
	Get(ctx context.Context, key string) (*models.ResaleComp, error)
	// Put stores comp under key, overwriting previous one.
	Put(ctx context.Context, key string, comp models.ResaleComp) error
}

// Source fetches recent sale prices for query.
type Source interface {
	FetchRecentSales(ctx context.Context, query string, maxResults int) ([]decimal.Decimal, error)
}

// Clock provides times.
type Clock interface {
	// Now returns current UTC time.
	Now() time.Time
}

// Option is custom configuration of Cache.
type Option func(c *Cache)

// Cache serves resale comps from store and refreshes them from source when they are missing or stale.
type Cache struct {
	store      Store
	source     Source
	ttl        time.Duration
	maxResults int
	clock      Clock
	logger     *zerolog.Logger
}

// NewCache returns new Cache.
func NewCache(store Store, source Source, logger *zerolog.Logger, ops ...Option) *Cache {
	c := &Cache{
		store:      store,
		source:     source,
		ttl:        DefaultTTL,
		maxResults: DefaultMaxResults,
		clock:      systemClock{},
		logger:     logger,
	}

	for _, op := range ops {
		op(c)
	}

	return c
}

// Lookup returns comp for query. It never fails: source and store errors degrade the outcome instead.
func (c *Cache) Lookup(ctx context.Context, query string) (models.ResaleComp, Outcome) {
	key := normalizer.Key(query)
	now := c.clock.Now()

	cached, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("query", key).
			Msg("can't read cached comp, treating as miss")
		cached = nil
	}

	if cached != nil && now.Sub(cached.FetchedAt) <= c.ttl {
		return *cached, OutcomeFresh
	}

	prices, err := c.source.FetchRecentSales(ctx, key, c.maxResults)
	if err != nil {
		if cached != nil {
			c.logger.Warn().
				Err(err).
				Str("query", key).
				Time("fetchedAt", cached.FetchedAt).
				Msg("can't fetch recent sales, using stale comp")
			return *cached, OutcomeStaleFallback
		}

		c.logger.Warn().
			Err(err).
			Str("query", key).
			Msg("can't fetch recent sales, no comp available")
		return models.ResaleComp{AvgResalePrice: decimal.Zero, FetchedAt: now}, OutcomeUnavailable
	}

	comp := Average(prices, c.maxResults, now)
	if err := c.store.Put(ctx, key, comp); err != nil {
		c.logger.Warn().
			Err(err).
			Str("query", key).
			Msg("can't store comp")
	}

	return comp, OutcomeRefreshed
}

// Average builds comp from up to maxResults positive sale prices, rounding average to cents.
func Average(prices []decimal.Decimal, maxResults int, fetchedAt time.Time) models.ResaleComp {
	valid := lo.Filter(prices, func(p decimal.Decimal, _ int) bool { return p.IsPositive() })
	if maxResults > 0 && len(valid) > maxResults {
		valid = valid[:maxResults]
	}

	if len(valid) == 0 {
		return models.ResaleComp{AvgResalePrice: decimal.Zero, FetchedAt: fetchedAt}
	}

	sum := decimal.Zero
	for _, p := range valid {
		sum = sum.Add(p)
	}

	return models.ResaleComp{
		AvgResalePrice: sum.Div(decimal.NewFromInt(int64(len(valid)))).Round(2),
		Volume30d:      len(valid),
		FetchedAt:      fetchedAt,
	}
}

// WithClock sets Cache's custom Clock.
func WithClock(clock Clock) Option {
	return func(c *Cache) {
		c.clock = clock
	}
}

// WithTTL sets Cache's freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMaxResults sets max number of sale prices fetched per query.
func WithMaxResults(maxResults int) Option {
	return func(c *Cache) {
		if maxResults > 0 {
			c.maxResults = maxResults
		}
	}
}

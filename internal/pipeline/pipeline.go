package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/MichalMitros/marketguard/internal/dedupe"
	"github.com/MichalMitros/marketguard/internal/gate"
	"github.com/MichalMitros/marketguard/internal/platform/models"
	"github.com/MichalMitros/marketguard/internal/resale"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

//go:generate mockery --name Decoder --filename decoder.go
//go:generate mockery --name Cache --filename cache.go
//go:generate mockery --name Publisher --filename publisher.go

// Decoder decodes listings file into parsing results.
type Decoder interface {
	Decode(context.Context, io.Reader, chan<- models.ParsingResult) error
}

// Screen drops listings outside of price window and auction-only listings.
type Screen interface {
	Check(listing *models.Listing) (bool, string)
}

// Gate decides whether listing title is resalable.
type Gate interface {
	Evaluate(title string) gate.Verdict
}

// Normalizer reduces listing title to lookup query.
type Normalizer interface {
	Normalize(title string) string
}

// Cache returns resale comp for lookup query.
type Cache interface {
	Lookup(ctx context.Context, query string) (models.ResaleComp, resale.Outcome)
}

// Evaluator builds flip result of a listing.
type Evaluator interface {
	Result(listing *models.Listing, query string, buyPrice decimal.Decimal, comp models.ResaleComp) models.FlipResult
}

// Publisher sends flip results downstream.
type Publisher interface {
	PublishResult(ctx context.Context, result models.FlipResult) error
}

// Clock provides times.
type Clock interface {
	// Now returns current UTC time.
	Now() time.Time
}

// Option is custom configuration of Pipeline.
type Option func(p *Pipeline)

// Pipeline decodes listings and evaluates every resalable one end-to-end, one after another.
type Pipeline struct {
	decoder         Decoder
	screen          Screen
	gate            Gate
	normalizer      Normalizer
	cache           Cache
	evaluator       Evaluator
	publisher       Publisher
	logger          *zerolog.Logger
	clock           Clock
	batchLimit      int
	includeShipping bool
}

// NewPipeline returns new Pipeline.
func NewPipeline(
	decoder Decoder,
	screen Screen,
	qualityGate Gate,
	normalizer Normalizer,
	cache Cache,
	evaluator Evaluator,
	logger *zerolog.Logger,
	ops ...Option,
) *Pipeline {
	p := &Pipeline{
		decoder:    decoder,
		screen:     screen,
		gate:       qualityGate,
		normalizer: normalizer,
		cache:      cache,
		evaluator:  evaluator,
		logger:     logger,
		clock:      systemClock{},
	}

	for _, op := range ops {
		op(p)
	}

	return p
}

// Run evaluates listings read from file.
// Results keep input order of deduplicated listings. Stats are returned even when error occurs.
func (p *Pipeline) Run(ctx context.Context, file io.Reader) ([]models.FlipResult, *models.ScanStats, error) {
	stats := models.NewScanStats(p.clock.Now())
	parsingResults := make(chan models.ParsingResult)
	accepted := make(chan models.Listing)
	results := []models.FlipResult{}

	errGroup, egCtx := errgroup.WithContext(ctx)

	// decode listings file.
	errGroup.Go(func() error {
		defer close(parsingResults)
		if err := p.decoder.Decode(egCtx, file, parsingResults); err != nil {
			return fmt.Errorf("can't decode listings file: %w", err)
		}
		return nil
	})

	// drop malformed, duplicated and not resalable listings.
	errGroup.Go(func() error {
		defer close(accepted)
		if err := p.filterListings(egCtx, parsingResults, accepted, stats); err != nil {
			return fmt.Errorf("can't filter listings: %w", err)
		}
		return nil
	})

	// evaluate listings.
	errGroup.Go(func() error {
		for listing := range accepted {
			results = append(results, p.evaluateListing(egCtx, &listing, stats))
		}
		return nil
	})

	err := errGroup.Wait()

	stats.FinishedAt = lo.ToPtr(p.clock.Now())

	p.logger.Info().
		Int32("decoded", stats.Decoded).
		Int32("malformed", stats.Malformed).
		Int32("duplicates", stats.Duplicates).
		Int32("evaluated", stats.Evaluated).
		Int32("flips", stats.Flips).
		Int32("nearMisses", stats.NearMisses).
		Int32("deferred", stats.Deferred).
		Msg("scan finished")

	return results, stats, err
}

func (p *Pipeline) filterListings(
	ctx context.Context,
	input <-chan models.ParsingResult,
	output chan<- models.Listing,
	stats *models.ScanStats,
) error {
	seen := dedupe.NewSeen()
	passed := 0

	for result := range input {
		if result.Error != nil {
			stats.Malformed++
			p.logger.Debug().Err(result.Error).Msg("malformed listing skipped")
			continue
		}

		listing := result.Listing
		stats.Decoded++

		if !seen.Add(&listing) {
			stats.Duplicates++
			continue
		}

		if ok, reason := p.screen.Check(&listing); !ok {
			stats.Screened[reason]++
			continue
		}

		if verdict := p.gate.Evaluate(listing.Title); !verdict.Accepted {
			stats.Rejected[verdict.Rule]++
			p.logger.Debug().
				Str("title", listing.Title).
				Str("rule", verdict.Rule).
				Str("reason", verdict.Reason).
				Msg("listing rejected")
			continue
		}

		// the remaining listings still have to be drained so that decoder can finish.
		if p.batchLimit > 0 && passed >= p.batchLimit {
			stats.Deferred++
			continue
		}
		passed++

		select {
		case <-ctx.Done():
			return ctx.Err()
		case output <- listing:
		}
	}

	return nil
}

func (p *Pipeline) evaluateListing(ctx context.Context, listing *models.Listing, stats *models.ScanStats) models.FlipResult {
	query := p.normalizer.Normalize(listing.Title)

	comp, outcome := p.cache.Lookup(ctx, query)
	if outcome == resale.OutcomeStaleFallback {
		stats.StaleComps++
	}

	result := p.evaluator.Result(listing, query, p.buyPrice(listing), comp)

	stats.Evaluated++
	if result.Flip {
		stats.Flips++
	}
	if result.NearMiss {
		stats.NearMisses++
	}

	p.logger.Debug().
		Str("title", listing.Title).
		Str("query", query).
		Str("outcome", string(outcome)).
		Bool("flip", result.Flip).
		Msg("listing evaluated")

	if p.publisher != nil {
		if err := p.publisher.PublishResult(ctx, result); err != nil {
			p.logger.Warn().
				Err(err).
				Str("url", result.URL).
				Msg("can't publish flip result")
		}
	}

	return result
}

func (p *Pipeline) buyPrice(listing *models.Listing) decimal.Decimal {
	if p.includeShipping && listing.ShippingCost != nil {
		return listing.Price.Add(*listing.ShippingCost)
	}
	return listing.Price
}

// WithClock sets Pipeline's custom Clock.
func WithClock(c Clock) Option {
	return func(p *Pipeline) {
		p.clock = c
	}
}

// WithPublisher sets Publisher receiving every flip result.
func WithPublisher(publisher Publisher) Option {
	return func(p *Pipeline) {
		p.publisher = publisher
	}
}

// WithBatchLimit limits number of listings evaluated in a single run. Zero means no limit.
func WithBatchLimit(limit int) Option {
	return func(p *Pipeline) {
		p.batchLimit = limit
	}
}

// WithShippingInBuyPrice adds listing shipping cost to its buy price.
func WithShippingInBuyPrice(include bool) Option {
	return func(p *Pipeline) {
		p.includeShipping = include
	}
}

package fetcher

import (
	"context"
	"sync"
	"time"

	"github.com/MichalMitros/marketguard/internal/resale"
	"github.com/shopspring/decimal"
)

// Throttled keeps minimal interval between calls of underlying source.
type Throttled struct {
	source      resale.Source
	minInterval time.Duration

	mu          sync.Mutex
	lastRequest time.Time
}

// NewThrottled returns new Throttled source.
func NewThrottled(source resale.Source, minInterval time.Duration) *Throttled {
	return &Throttled{
		source:      source,
		minInterval: minInterval,
	}
}

// FetchRecentSales waits until minimal interval since previous call passes and fetches recent sales.
func (t *Throttled) FetchRecentSales(ctx context.Context, query string, maxResults int) ([]decimal.Decimal, error) {
	if err := t.wait(ctx); err != nil {
		return nil, err
	}
	return t.source.FetchRecentSales(ctx, query, maxResults)
}

func (t *Throttled) wait(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.lastRequest.IsZero() {
		if err := sleep(ctx, t.minInterval-time.Since(t.lastRequest)); err != nil {
			return err
		}
	}
	t.lastRequest = time.Now()

	return nil
}

package dedupe

import (
	"strings"
	"sync"

	"github.com/MichalMitros/marketguard/internal/platform/models"
	"github.com/samber/lo"
)

// Seen tracks URLs and titles of listings already seen in a batch.
// It is safe for concurrent use.
type Seen struct {
	mu     sync.Mutex
	urls   map[string]struct{}
	titles map[string]struct{}
}

// NewSeen returns empty Seen.
func NewSeen() *Seen {
	return &Seen{
		urls:   map[string]struct{}{},
		titles: map[string]struct{}{},
	}
}

// Add records listing and reports whether it is the first occurrence of both its URL and title.
// Duplicate listing doesn't get recorded.
func (s *Seen) Add(listing *models.Listing) bool {
	url := strings.TrimSpace(listing.URL)
	title := titleKey(listing.Title)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.urls[url]; ok && url != "" {
		return false
	}
	if _, ok := s.titles[title]; ok && title != "" {
		return false
	}

	if url != "" {
		s.urls[url] = struct{}{}
	}
	if title != "" {
		s.titles[title] = struct{}{}
	}

	return true
}

// Dedupe returns listings without duplicated URLs or titles, keeping first occurrences in original order.
func Dedupe(listings []models.Listing) []models.Listing {
	seen := NewSeen()
	return lo.Filter(listings, func(listing models.Listing, _ int) bool {
		return seen.Add(&listing)
	})
}

func titleKey(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

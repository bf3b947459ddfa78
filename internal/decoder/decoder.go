package decoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/MichalMitros/marketguard/internal/platform/models"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// Decoder decodes JSON listings files into listings.
type Decoder struct {
	validate *validator.Validate
}

// NewDecoder returns new Decoder.
func NewDecoder() *Decoder {
	return &Decoder{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Decode decodes listings from JSON array in file and returns each listing with decoding error into output channel.
// Malformed record doesn't stop decoding, malformed JSON does.
func (d *Decoder) Decode(ctx context.Context, file io.Reader, output chan<- models.ParsingResult) error {
	dec := json.NewDecoder(file)

	token, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}
	if delim, ok := token.(json.Delim); !ok || delim != '[' {
		return ErrNotArray
	}

	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}

		var listing Listing
		err := json.Unmarshal(raw, &listing)
		if err == nil {
			unescapeListingFields(&listing)
			err = d.validateListing(&listing)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case output <- models.ParsingResult{
			Listing: toAppListing(&listing),
			Error:   err,
		}:
		}
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	return nil
}

func (d *Decoder) validateListing(listing *Listing) error {
	if err := d.validate.Struct(listing); err != nil {
		return fmt.Errorf("invalid listing: %w", err)
	}

	if !listing.Price.Valid || !listing.Price.Value.IsPositive() {
		return ErrInvalidPrice
	}

	return nil
}

// unescapeListingFields unescapes html characters from listing title and category and trims them.
func unescapeListingFields(listing *Listing) {
	listing.Title = strings.TrimSpace(html.UnescapeString(listing.Title))
	listing.URL = strings.TrimSpace(listing.URL)
	if listing.Category != nil {
		listing.Category = lo.ToPtr(strings.TrimSpace(html.UnescapeString(*listing.Category)))
	}
}

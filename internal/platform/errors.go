package platform

import (
	"errors"
)

// ErrNoListings is returned when there are no listings available to evaluate.
var ErrNoListings = errors.New("no listings available")

package decoder

import "errors"

var (
	// ErrInvalidPrice is returned when listing price is missing, malformed or not positive.
	ErrInvalidPrice = errors.New("invalid listing price")
	// ErrNotArray is returned when listings file is not a JSON array.
	ErrNotArray = errors.New("listings file is not a JSON array")
)

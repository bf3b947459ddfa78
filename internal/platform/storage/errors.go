package storage

import "errors"

// ErrLocked is returned when another writer holds the cache file lock.
var ErrLocked = errors.New("cache file is locked by another writer")

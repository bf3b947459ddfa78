package storage

import (
	"fmt"
	"os"
	"time"
)

// acquireLock creates lock file exclusively. Lock older than ttl is considered abandoned and removed.
func acquireLock(path string, ttl time.Duration) error {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, _ = fmt.Fprintf(f, `{"pid":%d,"time":%d}`+"\n", os.Getpid(), time.Now().Unix())
			return f.Close()
		}
		if !os.IsExist(err) {
			return fmt.Errorf("can't create lock file %s: %w", path, err)
		}

		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) < ttl {
			return ErrLocked
		}
		_ = os.Remove(path)
	}

	return ErrLocked
}

func releaseLock(path string) {
	_ = os.Remove(path)
}

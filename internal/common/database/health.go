package database

import (
	"context"
	"fmt"
	"time"
)

// Pinger is a backing store that can report whether it is reachable.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// CheckAll pings every store, each bounded by timeout, and returns the failures keyed by name.
func CheckAll(ctx context.Context, timeout time.Duration, stores ...Pinger) map[string]error {
	failures := make(map[string]error)
	for _, s := range stores {
		if s == nil {
			continue
		}
		pctx, cancel := context.WithTimeout(ctx, timeout)
		if err := s.Ping(pctx); err != nil {
			failures[s.Name()] = fmt.Errorf("%s unreachable: %w", s.Name(), err)
		}
		cancel()
	}
	return failures
}

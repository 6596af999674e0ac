// Package snapshot loads point-in-time product catalogs for the listing pipeline.
package snapshot

import (
	"context"
	"errors"

	"storefront-workers/internal/catalog"
)

var (
	ErrSnapshotLoad   = errors.New("SNAPSHOT_LOAD_FAILED")
	ErrSnapshotDecode = errors.New("SNAPSHOT_DECODE_FAILED")
	ErrIndexNotFound  = errors.New("INDEX_NOT_FOUND")
)

// Source supplies a complete, internally consistent product snapshot. The returned
// snapshot is never mutated afterwards by the source.
type Source interface {
	Name() string
	Load(ctx context.Context) (catalog.Snapshot, error)
}

package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"storefront-workers/internal/catalog"
)

// Static serves a fixed product list, such as a fixture file in local development.
type Static struct {
	products []catalog.Product
}

func NewStatic(products []catalog.Product) *Static {
	return &Static{products: slices.Clone(products)}
}

// NewStaticFromFile reads a JSON array of products. An empty path yields an empty catalog.
func NewStaticFromFile(path string) (*Static, error) {
	if path == "" {
		return NewStatic(nil), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrSnapshotLoad, path, err)
	}

	var products []catalog.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSnapshotDecode, path, err)
	}
	return &Static{products: products}, nil
}

func (s *Static) Name() string { return "static" }

func (s *Static) Load(ctx context.Context) (catalog.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return catalog.Refs(s.products), nil
}

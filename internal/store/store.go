package store

import (
	"context"
	"errors"

	"github.com/MikeSquared-Agency/Admit/internal/catalog"
)

var ErrNotFound = errors.New("catalog dataset not found")

// CatalogSource loads the master catalog dataset. Implementations return
// ErrNotFound when no dataset exists at the source.
type CatalogSource interface {
	Load(ctx context.Context) (*catalog.Dataset, error)
}

// StaticSource serves a fixed dataset.
type StaticSource struct {
	Dataset *catalog.Dataset
}

func (s StaticSource) Load(_ context.Context) (*catalog.Dataset, error) {
	if s.Dataset == nil {
		return nil, ErrNotFound
	}
	return s.Dataset, nil
}

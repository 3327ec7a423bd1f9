package factory

import (
	"context"
	"fmt"

	"github.com/lexfold/canondoc/internal/store"
	"github.com/lexfold/canondoc/internal/store/es"
	"github.com/lexfold/canondoc/internal/store/inmem"
	"github.com/lexfold/canondoc/internal/store/pg"
)

// Stores bundles the document store with the query store backing it. The
// in-memory and pg/es backends implement both.
type Stores struct {
	Documents store.Store
	Queries   store.QueryStore
}

// NewStores creates the configured storage backend.
func NewStores(ctx context.Context, cfg *StorageConfig) (*Stores, error) {
	switch cfg.Type {
	case store.PG:
		if cfg.Pg == nil {
			return nil, fmt.Errorf("postgres storage selected but not configured")
		}

		pool, err := pg.NewConnectionPool(ctx, *cfg.Pg)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
		}

		s, err := pg.NewStore(pool)
		if err != nil {
			return nil, err
		}
		return &Stores{Documents: s, Queries: s}, nil

	case store.ES:
		if cfg.Es == nil {
			return nil, fmt.Errorf("elasticsearch storage selected but not configured")
		}

		s, err := es.NewStore(ctx, *cfg.Es)
		if err != nil {
			return nil, err
		}
		return &Stores{Documents: s, Queries: s}, nil

	case store.InMem:
		s := inmem.NewStore()
		return &Stores{Documents: s, Queries: s}, nil

	default:
		return nil, fmt.Errorf(string(store.ErrUnsupportedStore), cfg.Type)
	}
}

package pos

import (
	"context"
	"fmt"
	"strings"
)

// CatalogFetcher abstracts the inventory service's catalog endpoints.
type CatalogFetcher interface {
	// FetchItems returns the full catalog.
	FetchItems(ctx context.Context) ([]Item, error)

	// FetchItemsFiltered returns a server-side filtered catalog.
	FetchItemsFiltered(ctx context.Context, query string) ([]Item, error)
}

// CatalogRepository holds the most recently fetched catalog snapshot.
// A load replaces the snapshot wholesale; on failure the previous snapshot
// is retained and stays readable (stale reads over blocked reads). The
// repository never retries on its own.
type CatalogRepository struct {
	fetcher  CatalogFetcher
	snapshot []Item
}

// NewCatalogRepository creates a repository with an empty snapshot.
func NewCatalogRepository(fetcher CatalogFetcher) *CatalogRepository {
	return &CatalogRepository{fetcher: fetcher}
}

// Load fetches the full catalog and replaces the snapshot.
func (r *CatalogRepository) Load(ctx context.Context) error {
	items, err := r.fetcher.FetchItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	r.snapshot = items
	return nil
}

// LoadFiltered fetches a server-side filtered catalog. The result is
// returned directly and the autocomplete snapshot is left untouched; only
// the simple search variant uses this path.
func (r *CatalogRepository) LoadFiltered(ctx context.Context, query string) ([]Item, error) {
	items, err := r.fetcher.FetchItemsFiltered(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}
	return items, nil
}

// Snapshot returns the current snapshot in catalog order.
func (r *CatalogRepository) Snapshot() []Item {
	return r.snapshot
}

// Find returns the item with the given id, or false when absent.
func (r *CatalogRepository) Find(itemID string) (Item, bool) {
	for _, it := range r.snapshot {
		if it.ID == itemID {
			return it, true
		}
	}
	return Item{}, false
}

// FindByCode returns the item with the given business code, compared
// case-insensitively, or false when absent.
func (r *CatalogRepository) FindByCode(code string) (Item, bool) {
	for _, it := range r.snapshot {
		if strings.EqualFold(it.Code, code) {
			return it, true
		}
	}
	return Item{}, false
}

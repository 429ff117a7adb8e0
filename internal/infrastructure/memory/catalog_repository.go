package memory

import (
	"context"

	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
)

// CatalogRepository serves the batch lookup as a read-side join of the
// product table and current stock, so the lifecycle gets price and
// availability in one call.
type CatalogRepository struct {
	store *Store
}

func NewCatalogRepository(store *Store) *CatalogRepository {
	return &CatalogRepository{store: store}
}

func (r *CatalogRepository) FindByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	_ = ctx

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	found := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		p, ok := r.store.products[id]
		if !ok {
			continue
		}
		if item, ok := r.store.stock[id]; ok {
			p.Available = item.Quantity
		}
		found[id] = p
	}
	return found, nil
}

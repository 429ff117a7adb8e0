// Package memory is the in-process storage binding: a single Store
// shared by the order, stock, and catalog repositories, plus the
// transaction manager that groups writes across them.
package memory

import (
	"sync"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
)

// Store holds all state behind one lock so a transaction scope can
// span orders and stock. Repositories lock it themselves for
// stand-alone reads; transactional writes run with the lock already
// held by the manager.
type Store struct {
	mu       sync.RWMutex
	orders   map[string]*order.Order
	stock    map[string]*inventory.StockItem
	products map[string]catalog.Product
}

func NewStore() *Store {
	return &Store{
		orders:   make(map[string]*order.Order),
		stock:    make(map[string]*inventory.StockItem),
		products: make(map[string]catalog.Product),
	}
}

// SeedProduct registers a catalog entry and its opening stock. Meant
// for wiring and tests; live mutation goes through the repositories.
func (s *Store) SeedProduct(p catalog.Product, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
	s.stock[p.ID] = &inventory.StockItem{ProductID: p.ID, Quantity: stock}
}

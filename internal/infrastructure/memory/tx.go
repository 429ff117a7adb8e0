package memory

import (
	"context"
	"errors"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/tx"
)

// errScope is returned when a repository is handed a scope that did not
// come from this binding's transaction manager.
var errScope = errors.New("memory: scope does not belong to this store")

// txScope is the concrete tx.Scope for the memory binding. It records
// an undo closure per write and compensates in LIFO order on rollback.
type txScope struct {
	store *Store
	undo  []func()
}

func (s *txScope) record(fn func()) {
	s.undo = append(s.undo, fn)
}

func (s *txScope) rollback() {
	for i := len(s.undo) - 1; i >= 0; i-- {
		s.undo[i]()
	}
	s.undo = nil
}

// TxManager implements tx.Manager over a Store. The store lock is held
// for the whole unit of work, which gives the isolation the lifecycle
// relies on: no concurrent call observes a partially applied scope.
type TxManager struct {
	store *Store
}

func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// RunAtomic runs work under the store lock with a fresh scope. On any
// error from work the recorded writes are undone newest-first and the
// original error is returned unchanged.
func (m *TxManager) RunAtomic(ctx context.Context, work func(ctx context.Context, scope tx.Scope) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	scope := &txScope{store: m.store}
	if err := work(ctx, scope); err != nil {
		scope.rollback()
		return err
	}
	scope.undo = nil
	return nil
}

// scopeFor validates that scope was issued by this store's manager.
func scopeFor(store *Store, scope tx.Scope) (*txScope, error) {
	s, ok := scope.(*txScope)
	if !ok || s.store != store {
		return nil, errScope
	}
	return s, nil
}

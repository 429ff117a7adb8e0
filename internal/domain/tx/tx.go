// Package tx defines the transaction coordinator contract: a unit of
// work in which every write either commits durably or rolls back as a
// whole.
package tx

import "context"

// Scope identifies an active atomic unit of work. Each storage binding
// supplies its own concrete scope type; store adapters type-assert the
// scope they are handed. A single call never opens more than one scope.
type Scope interface{}

// Manager runs a unit of work atomically.
type Manager interface {
	// RunAtomic invokes work with a fresh scope. If work returns an
	// error, every write issued against the scope so far is rolled back
	// and the original error is returned unchanged; the coordinator
	// never swallows or reclassifies failures. Work must issue writes
	// only through scope-accepting store operations and must not start
	// a nested scope.
	RunAtomic(ctx context.Context, work func(ctx context.Context, scope Scope) error) error
}

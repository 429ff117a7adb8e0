// Package errs defines the error taxonomy shared by the order core.
// All failures are raised synchronously to the caller with enough
// structured detail to render a precise message; idempotent outcomes
// (already paid, already cancelled) are successes, never errors.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports invalid input: an empty item list, a
// non-positive quantity, unknown item identities, or insufficient
// stock. Recoverable by the caller correcting the request.
type ValidationError struct {
	Msg string
	// ItemIDs names the offending catalog items, when the failure is
	// tied to specific lines.
	ItemIDs []string
	// Available/Requested carry the quantities for insufficient-stock
	// failures; both are zero otherwise.
	Available int
	Requested int
}

func (e *ValidationError) Error() string {
	if len(e.ItemIDs) == 0 {
		return "validation: " + e.Msg
	}
	return fmt.Sprintf("validation: %s: %s", e.Msg, strings.Join(e.ItemIDs, ", "))
}

// NewValidation builds a ValidationError with a bare message.
func NewValidation(msg string) *ValidationError {
	return &ValidationError{Msg: msg}
}

// NewUnknownItems reports catalog identities that could not be resolved.
func NewUnknownItems(ids []string) *ValidationError {
	return &ValidationError{Msg: "unknown items", ItemIDs: ids}
}

// NewInsufficientStock reports a line whose requested quantity exceeds
// the available stock.
func NewInsufficientStock(itemID string, available, requested int) *ValidationError {
	return &ValidationError{
		Msg:       fmt.Sprintf("insufficient stock (available %d, requested %d)", available, requested),
		ItemIDs:   []string{itemID},
		Available: available,
		Requested: requested,
	}
}

// NotFoundError reports that an order or catalog item does not exist.
type NotFoundError struct {
	Kind string // "order" or "item"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// NewOrderNotFound reports a missing order.
func NewOrderNotFound(id string) *NotFoundError {
	return &NotFoundError{Kind: "order", ID: id}
}

// NewItemNotFound reports a missing stock or catalog item.
func NewItemNotFound(id string) *NotFoundError {
	return &NotFoundError{Kind: "item", ID: id}
}

// AuthorizationError reports that the acting identity is neither the
// order owner nor holds elevated privilege.
type AuthorizationError struct {
	ActorID string
	OrderID string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("actor %q is not allowed to access order %q", e.ActorID, e.OrderID)
}

// ConflictError reports a transition that is illegal for the order's
// current status, e.g. paying a cancelled order.
type ConflictError struct {
	OrderID   string
	Status    string // current order status
	Requested string // attempted operation
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot %s order %q in status %q", e.Requested, e.OrderID, e.Status)
}

// InternalError wraps a storage or transaction failure. By the time it
// reaches the caller the coordinator has already rolled back any
// partial writes.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	return "internal: " + e.Err.Error()
}

func (e *InternalError) Unwrap() error { return e.Err }

// NewInternal wraps err as an InternalError. Errors that already belong
// to the taxonomy pass through unchanged so classification survives
// storage-layer plumbing.
func NewInternal(err error) error {
	if err == nil {
		return nil
	}
	if Classified(err) {
		return err
	}
	return &InternalError{Err: err}
}

// Classified reports whether err already belongs to the taxonomy,
// possibly behind fmt.Errorf wrapping.
func Classified(err error) bool {
	var (
		ve *ValidationError
		nf *NotFoundError
		ae *AuthorizationError
		ce *ConflictError
		ie *InternalError
	)
	return errors.As(err, &ve) || errors.As(err, &nf) ||
		errors.As(err, &ae) || errors.As(err, &ce) || errors.As(err, &ie)
}

package order

import "github.com/Zhima-Mochi/minishop-orders/internal/domain/errs"

// Outcome reports how a lifecycle call resolved. The idempotent
// variants are successes: the order is already in the requested status
// and nothing was mutated.
type Outcome string

const (
	OutcomeApplied          Outcome = "applied"
	OutcomeAlreadyPaid      Outcome = "already_paid"
	OutcomeAlreadyCancelled Outcome = "already_cancelled"
)

// orderState implements the state pattern over the status graph:
// created → paid, created → cancelled, paid → cancelled. cancelled is
// terminal. No component outside this file may set a status directly.
type orderState interface {
	status() Status
	pay(o *Order) (orderState, Outcome, error)
	cancel(o *Order) (orderState, Outcome, error)
}

func stateFor(s Status) orderState {
	switch s {
	case StatusPaid:
		return paidState{}
	case StatusCancelled:
		return cancelledState{}
	default:
		return createdState{}
	}
}

type createdState struct{}

func (createdState) status() Status { return StatusCreated }

func (createdState) pay(*Order) (orderState, Outcome, error) {
	return paidState{}, OutcomeApplied, nil
}

func (createdState) cancel(*Order) (orderState, Outcome, error) {
	return cancelledState{}, OutcomeApplied, nil
}

type paidState struct{}

func (paidState) status() Status { return StatusPaid }

func (paidState) pay(*Order) (orderState, Outcome, error) {
	return paidState{}, OutcomeAlreadyPaid, nil
}

func (paidState) cancel(*Order) (orderState, Outcome, error) {
	return cancelledState{}, OutcomeApplied, nil
}

type cancelledState struct{}

func (cancelledState) status() Status { return StatusCancelled }

func (cancelledState) pay(o *Order) (orderState, Outcome, error) {
	return nil, "", &errs.ConflictError{
		OrderID:   o.ID,
		Status:    string(StatusCancelled),
		Requested: "pay",
	}
}

func (cancelledState) cancel(*Order) (orderState, Outcome, error) {
	return cancelledState{}, OutcomeAlreadyCancelled, nil
}

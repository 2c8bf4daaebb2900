package entities

import (
	"errors"
	"fmt"
)

// BudgetStatus represents the lifecycle of a budget.
//
//	draft ──► sent ──► approved ──► paid
//	  │         │
//	  ├─────────┴──► rejected
//	  └──► approved
//
// rejected and paid are terminal.
type BudgetStatus string

const (
	BudgetStatusDraft    BudgetStatus = "draft"
	BudgetStatusSent     BudgetStatus = "sent"
	BudgetStatusApproved BudgetStatus = "approved"
	BudgetStatusRejected BudgetStatus = "rejected"
	BudgetStatusPaid     BudgetStatus = "paid"
)

var ErrInvalidTransition = errors.New("invalid status transition")

var budgetTransitions = map[BudgetStatus][]BudgetStatus{
	BudgetStatusDraft:    {BudgetStatusSent, BudgetStatusApproved, BudgetStatusRejected},
	BudgetStatusSent:     {BudgetStatusApproved, BudgetStatusRejected},
	BudgetStatusApproved: {BudgetStatusPaid},
}

// AllBudgetStatuses lists the statuses in lifecycle order.
func AllBudgetStatuses() []BudgetStatus {
	return []BudgetStatus{
		BudgetStatusDraft,
		BudgetStatusSent,
		BudgetStatusApproved,
		BudgetStatusRejected,
		BudgetStatusPaid,
	}
}

func (s BudgetStatus) Valid() bool {
	switch s {
	case BudgetStatusDraft, BudgetStatusSent, BudgetStatusApproved, BudgetStatusRejected, BudgetStatusPaid:
		return true
	}
	return false
}

func (s BudgetStatus) Terminal() bool {
	return s == BudgetStatusRejected || s == BudgetStatusPaid
}

// CanTransition reports whether s may move to next.
func (s BudgetStatus) CanTransition(next BudgetStatus) bool {
	for _, allowed := range budgetTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition returns next when the move is allowed, ErrInvalidTransition otherwise.
func (s BudgetStatus) Transition(next BudgetStatus) (BudgetStatus, error) {
	if !s.CanTransition(next) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return next, nil
}

// Label is the pt-BR label used in customer-facing messages.
// Only the decision statuses have one; others render as-is.
func (s BudgetStatus) Label() string {
	switch s {
	case BudgetStatusApproved:
		return "Aprovado ✅"
	case BudgetStatusRejected:
		return "Rejeitado ❌"
	}
	return string(s)
}

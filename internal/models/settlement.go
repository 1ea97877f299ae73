package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settlement represents a payment from one participant to another to clear debt.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// Amount is the payment amount. Always positive.
	Amount decimal.Decimal

	// Date is when the payment happened.
	Date time.Time

	// FromID is the participant who paid (debtor settling up).
	FromID string

	// ToID is the participant who received payment (creditor being paid).
	ToID string

	// GroupID is set when the settlement was recorded within a group.
	GroupID string

	// FullSettlement marks a payment that cleared the whole outstanding balance.
	FullSettlement bool

	// Note is an optional description for the settlement.
	Note string

	// CreatedAt is when the settlement was recorded.
	CreatedAt time.Time

	// DeletedAt is set when the settlement has been soft-deleted.
	DeletedAt time.Time
}

// IsDeleted reports whether the settlement has been soft-deleted.
func (s *Settlement) IsDeleted() bool {
	return !s.DeletedAt.IsZero()
}

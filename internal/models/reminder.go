package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reminder is a request for payment. It has no effect on balances.
type Reminder struct {
	ID string

	// Amount is the amount being asked for.
	Amount decimal.Decimal

	// FromID is the participant sending the reminder.
	FromID string

	// RecipientID is the participant being reminded.
	RecipientID string

	GroupID string

	// Read is set once the recipient has seen the reminder.
	Read bool

	// Cleared is set once the recipient dismissed it.
	Cleared bool

	Note string

	CreatedAt time.Time
	DeletedAt time.Time
}

// IsDeleted reports whether the reminder has been soft-deleted.
func (r *Reminder) IsDeleted() bool {
	return !r.DeletedAt.IsZero()
}

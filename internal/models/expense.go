package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense represents a cost paid by one participant and shared among others.
// The expense and its splits are persisted atomically.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// Title is the human-readable name for the expense.
	Title string

	// Amount is the total paid, rounded to the ledger currency's minor unit.
	Amount decimal.Decimal

	// Date is when the expense happened.
	Date time.Time

	// PayerID is the participant who paid. Multiple payers are not supported.
	PayerID string

	// GroupID is set when the expense belongs to a group.
	GroupID string

	// Method is the split strategy that produced Splits.
	Method SplitMethod

	// Splits hold each participant's owed amount. They sum to Amount exactly.
	// The payer may appear with their own share; that share is never debt.
	Splits []Split

	// Note is an optional free-text description.
	Note string

	// CreatedAt is when the expense was recorded.
	CreatedAt time.Time

	// DeletedAt is set when the expense has been soft-deleted.
	DeletedAt time.Time
}

// IsDeleted reports whether the expense has been soft-deleted.
func (e *Expense) IsDeleted() bool {
	return !e.DeletedAt.IsZero()
}

// SplitFor returns the split owed by participantID, if any.
func (e *Expense) SplitFor(participantID string) (Split, bool) {
	for _, s := range e.Splits {
		if s.ParticipantID == participantID {
			return s, true
		}
	}
	return Split{}, false
}

// Split is one participant's owed portion of an expense.
// It has no identity of its own; see SplitKey.
type Split struct {
	// ParticipantID is who owes this portion.
	ParticipantID string

	// Amount is the owed amount. Never negative.
	Amount decimal.Decimal
}

// SplitKey addresses a split within the ledger.
type SplitKey struct {
	ExpenseID     string
	ParticipantID string
}

// Key returns the key of s within e.
func (e *Expense) Key(s Split) SplitKey {
	return SplitKey{ExpenseID: e.ID, ParticipantID: s.ParticipantID}
}

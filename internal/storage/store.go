// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/swisscoin/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist or has been soft-deleted.
	ErrNotFound = errors.New("not found")

	// ErrIntegrity is returned when stored data breaks a ledger invariant,
	// e.g. an expense with no splits.
	ErrIntegrity = errors.New("data integrity violation")
)

// LedgerScope selects the records balances and feeds are computed from:
// everything in GroupID when it is set, otherwise everything ParticipantID
// takes part in.
type LedgerScope struct {
	ParticipantID string
	GroupID       string

	// Counterpart selects the direct messages between ParticipantID and
	// Counterpart. Without a group or counterpart no messages are loaded.
	Counterpart string
}

// Ledger holds the active records of one scope, read in a single transaction.
type Ledger struct {
	Expenses    []models.Expense
	Settlements []models.Settlement
	Reminders   []models.Reminder
	Messages    []models.Message
}

// SettleFunc finalizes a settlement against the current ledger of its
// scope. Returning an error aborts the write.
type SettleFunc func(ledger *Ledger, settlement *models.Settlement) error

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// List methods return active records only. Get methods also return
// soft-deleted records so callers can tell "deleted" from "never existed".
type Store interface {
	// Participant operations
	CreateParticipant(ctx context.Context, p *models.Participant) error
	GetParticipant(ctx context.Context, participantID string) (*models.Participant, error)
	GetParticipantsByIDs(ctx context.Context, ids []string) (map[string]*models.Participant, error)
	ListParticipants(ctx context.Context) ([]*models.Participant, error)

	// Group operations
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListGroupsByParticipant(ctx context.Context, participantID string) ([]*models.Group, error)
	AddGroupMembers(ctx context.Context, groupID string, participantIDs []string) error

	// Expense operations. An expense and its splits are written in one
	// transaction, together with any group memberships it implies.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	ListExpensesByParticipant(ctx context.Context, participantID string) ([]models.Expense, error)
	ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error)
	DeleteExpense(ctx context.Context, expenseID string) error

	// Settlement operations
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	ListSettlementsByParticipant(ctx context.Context, participantID string) ([]models.Settlement, error)
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]models.Settlement, error)
	DeleteSettlement(ctx context.Context, settlementID string) error
	SettleAgainstLedger(ctx context.Context, scope LedgerScope, settlement *models.Settlement, settle SettleFunc) error

	// LoadLedger reads every active record of scope as one consistent snapshot.
	LoadLedger(ctx context.Context, scope LedgerScope) (*Ledger, error)

	// Reminder operations
	CreateReminder(ctx context.Context, reminder *models.Reminder) error
	GetReminder(ctx context.Context, reminderID string) (*models.Reminder, error)
	ListRemindersByParticipant(ctx context.Context, participantID string) ([]models.Reminder, error)
	ListRemindersByGroup(ctx context.Context, groupID string) ([]models.Reminder, error)
	UpdateReminderStatus(ctx context.Context, reminderID string, read, cleared bool) error
	DeleteReminder(ctx context.Context, reminderID string) error

	// Message operations
	CreateMessage(ctx context.Context, message *models.Message) error
	ListMessagesBetween(ctx context.Context, a, b string) ([]models.Message, error)
	ListMessagesByGroup(ctx context.Context, groupID string) ([]models.Message, error)

	// Close releases any resources held by the store.
	Close() error
}

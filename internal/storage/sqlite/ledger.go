package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/swisscoin/internal/storage"
)

// LoadLedger reads the records of scope inside one read-only transaction,
// so no write can land between the individual lists.
func (s *SQLiteStore) LoadLedger(ctx context.Context, scope storage.LedgerScope) (*storage.Ledger, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ledger, err := loadLedger(ctx, tx, scope)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return ledger, nil
}

func loadLedger(ctx context.Context, q querier, scope storage.LedgerScope) (*storage.Ledger, error) {
	var (
		ledger storage.Ledger
		err    error
	)

	if scope.GroupID != "" {
		if ledger.Expenses, err = listExpenses(ctx, q, expensesByGroup, scope.GroupID); err != nil {
			return nil, err
		}
		if ledger.Settlements, err = listSettlements(ctx, q, settlementsByGroup, scope.GroupID); err != nil {
			return nil, err
		}
		if ledger.Reminders, err = listReminders(ctx, q, remindersByGroup, scope.GroupID); err != nil {
			return nil, err
		}
		if ledger.Messages, err = listMessages(ctx, q, messagesByGroup, scope.GroupID); err != nil {
			return nil, err
		}
		return &ledger, nil
	}

	if scope.ParticipantID == "" {
		return nil, errors.New("ledger scope needs a participant or a group")
	}
	id := scope.ParticipantID
	if ledger.Expenses, err = listExpenses(ctx, q, expensesByParticipant, id, id); err != nil {
		return nil, err
	}
	if ledger.Settlements, err = listSettlements(ctx, q, settlementsByParticipant, id, id); err != nil {
		return nil, err
	}
	if ledger.Reminders, err = listReminders(ctx, q, remindersByParticipant, id, id); err != nil {
		return nil, err
	}
	if scope.Counterpart != "" {
		if ledger.Messages, err = listMessages(ctx, q, messagesBetween, id, scope.Counterpart, scope.Counterpart, id); err != nil {
			return nil, err
		}
	}
	return &ledger, nil
}

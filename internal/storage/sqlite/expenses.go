package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/storage"
)

const expenseColumns = "id, title, amount, date, payer_id, group_id, split_method, note, created_at, deleted_at"

const (
	expensesByParticipant = `SELECT ` + expenseColumns + ` FROM expenses
		 WHERE deleted_at IS NULL
		   AND (payer_id = ? OR id IN (SELECT expense_id FROM splits WHERE participant_id = ?))
		 ORDER BY date DESC, id`

	expensesByGroup = `SELECT ` + expenseColumns + ` FROM expenses
		 WHERE deleted_at IS NULL AND group_id = ?
		 ORDER BY date DESC, id`
)

// CreateExpense persists an expense and its splits in one transaction.
// Either both are stored or neither is. For a group expense the payer and
// every split participant become group members in the same transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if len(expense.Splits) == 0 {
		return fmt.Errorf("expense without splits: %w", storage.ErrIntegrity)
	}
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	if expense.Date.IsZero() {
		expense.Date = expense.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, title, amount, date, payer_id, group_id, split_method, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.Title, expense.Amount, expense.Date.Unix(), expense.PayerID,
		nullString(expense.GroupID), string(expense.Method), nullString(expense.Note), expense.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for _, split := range expense.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO splits (expense_id, participant_id, amount) VALUES (?, ?, ?)",
			expense.ID, split.ParticipantID, split.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if expense.GroupID != "" {
		members := []string{expense.PayerID}
		for _, split := range expense.Splits {
			members = append(members, split.ParticipantID)
		}
		if err := insertGroupMembers(ctx, tx, expense.GroupID, members); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense with its splits. Soft-deleted expenses are
// returned with DeletedAt set.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?",
		expenseID,
	)
	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	expenses := []models.Expense{*expense}
	if err := attachSplits(ctx, s.db, expenses); err != nil {
		return nil, err
	}

	return &expenses[0], nil
}

// ListExpensesByParticipant returns active expenses paid by or split with
// participantID, newest first.
func (s *SQLiteStore) ListExpensesByParticipant(ctx context.Context, participantID string) ([]models.Expense, error) {
	return listExpenses(ctx, s.db, expensesByParticipant, participantID, participantID)
}

// ListExpensesByGroup returns the active expenses of a group, newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]models.Expense, error) {
	return listExpenses(ctx, s.db, expensesByGroup, groupID)
}

// DeleteExpense soft-deletes an expense. Its splits stay in place so the
// record remains auditable.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	err := s.execOne(ctx,
		"UPDATE expenses SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		now(), expenseID,
	)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("expense %s: %w", expenseID, err)
	}
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}

func listExpenses(ctx context.Context, q querier, query string, args ...any) ([]models.Expense, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	rows.Close()

	if err := attachSplits(ctx, q, expenses); err != nil {
		return nil, err
	}

	return expenses, nil
}

// attachSplits loads the splits of all given expenses in one query.
// An expense without splits is corrupt and fails the whole load.
func attachSplits(ctx context.Context, q querier, expenses []models.Expense) error {
	if len(expenses) == 0 {
		return nil
	}

	ids := make([]string, len(expenses))
	index := make(map[string]int, len(expenses))
	for i, e := range expenses {
		ids[i] = e.ID
		index[e.ID] = i
	}

	rows, err := q.QueryContext(ctx,
		"SELECT expense_id, participant_id, amount FROM splits WHERE expense_id IN ("+repeatPlaceholder(len(ids))+") ORDER BY expense_id, participant_id",
		toArgs(ids)...,
	)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var expenseID string
		var split models.Split
		if err := rows.Scan(&expenseID, &split.ParticipantID, &split.Amount); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		i := index[expenseID]
		expenses[i].Splits = append(expenses[i].Splits, split)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}

	for _, e := range expenses {
		if len(e.Splits) == 0 {
			return fmt.Errorf("expense %s has no splits: %w", e.ID, storage.ErrIntegrity)
		}
	}

	return nil
}

func scanExpense(row scanner) (*models.Expense, error) {
	e := &models.Expense{}
	var groupID, note sql.NullString
	var method string
	var date, createdAt int64
	var deletedAt sql.NullInt64
	if err := row.Scan(&e.ID, &e.Title, &e.Amount, &date, &e.PayerID, &groupID, &method, &note, &createdAt, &deletedAt); err != nil {
		return nil, err
	}
	e.GroupID = groupID.String
	e.Method = models.SplitMethod(method)
	e.Note = note.String
	e.Date = fromUnix(date)
	e.CreatedAt = fromUnix(createdAt)
	e.DeletedAt = fromNullUnix(deletedAt)
	return e, nil
}

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

const settlementColumns = "id, amount, date, from_id, to_id, group_id, full_settlement, note, created_at, deleted_at"

const (
	settlementsByParticipant = `SELECT ` + settlementColumns + ` FROM settlements
		 WHERE deleted_at IS NULL AND (from_id = ? OR to_id = ?)
		 ORDER BY date DESC, id`

	settlementsByGroup = `SELECT ` + settlementColumns + ` FROM settlements
		 WHERE deleted_at IS NULL AND group_id = ?
		 ORDER BY date DESC, id`
)

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	return insertSettlement(ctx, s.db, settlement)
}

// SettleAgainstLedger loads the ledger of scope, lets settle finalize the
// settlement and inserts it, all in one write transaction. Concurrent
// settlements of the same debt therefore see each other.
func (s *SQLiteStore) SettleAgainstLedger(ctx context.Context, scope storage.LedgerScope, settlement *models.Settlement, settle storage.SettleFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ledger, err := loadLedger(ctx, tx, scope)
	if err != nil {
		return err
	}
	if err := settle(ledger, settlement); err != nil {
		return err
	}
	if err := insertSettlement(ctx, tx, settlement); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertSettlement(ctx context.Context, q querier, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt.IsZero() {
		settlement.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	if settlement.Date.IsZero() {
		settlement.Date = settlement.CreatedAt
	}

	_, err := q.ExecContext(ctx,
		`INSERT INTO settlements (id, amount, date, from_id, to_id, group_id, full_settlement, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.Amount, settlement.Date.Unix(), settlement.FromID, settlement.ToID,
		nullString(settlement.GroupID), settlement.FullSettlement, nullString(settlement.Note), settlement.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	return nil
}

// GetSettlement retrieves a settlement by ID, including soft-deleted ones.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE id = ?",
		settlementID,
	)
	settlement, err := scanSettlement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

// ListSettlementsByParticipant retrieves the active settlements paid or received by participantID.
func (s *SQLiteStore) ListSettlementsByParticipant(ctx context.Context, participantID string) ([]models.Settlement, error) {
	return listSettlements(ctx, s.db, settlementsByParticipant, participantID, participantID)
}

// ListSettlementsByGroup retrieves the active settlements of a group.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]models.Settlement, error) {
	return listSettlements(ctx, s.db, settlementsByGroup, groupID)
}

// DeleteSettlement soft-deletes a settlement by ID.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, settlementID string) error {
	err := s.execOne(ctx,
		"UPDATE settlements SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		now(), settlementID,
	)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("settlement %s: %w", settlementID, err)
	}
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	return nil
}

func listSettlements(ctx context.Context, q querier, query string, args ...any) ([]models.Settlement, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, *settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

func scanSettlement(row scanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var groupID, note sql.NullString
	var date, createdAt int64
	var deletedAt sql.NullInt64
	if err := row.Scan(&settlement.ID, &settlement.Amount, &date, &settlement.FromID, &settlement.ToID,
		&groupID, &settlement.FullSettlement, &note, &createdAt, &deletedAt); err != nil {
		return nil, err
	}
	settlement.GroupID = groupID.String
	settlement.Note = note.String
	settlement.Date = fromUnix(date)
	settlement.CreatedAt = fromUnix(createdAt)
	settlement.DeletedAt = fromNullUnix(deletedAt)
	return settlement, nil
}

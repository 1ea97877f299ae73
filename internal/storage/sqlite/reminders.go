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

const reminderColumns = "id, amount, from_id, recipient_id, group_id, is_read, is_cleared, note, created_at, deleted_at"

const (
	remindersByParticipant = `SELECT ` + reminderColumns + ` FROM reminders
		 WHERE deleted_at IS NULL AND (from_id = ? OR recipient_id = ?)
		 ORDER BY created_at DESC, id`

	remindersByGroup = `SELECT ` + reminderColumns + ` FROM reminders
		 WHERE deleted_at IS NULL AND group_id = ?
		 ORDER BY created_at DESC, id`
)

// CreateReminder persists a new reminder.
func (s *SQLiteStore) CreateReminder(ctx context.Context, reminder *models.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.New().String()
	}
	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (id, amount, from_id, recipient_id, group_id, is_read, is_cleared, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reminder.ID, reminder.Amount, reminder.FromID, reminder.RecipientID, nullString(reminder.GroupID),
		reminder.Read, reminder.Cleared, nullString(reminder.Note), reminder.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}

	return nil
}

// GetReminder retrieves a reminder by ID, including soft-deleted ones.
func (s *SQLiteStore) GetReminder(ctx context.Context, reminderID string) (*models.Reminder, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+reminderColumns+" FROM reminders WHERE id = ?",
		reminderID,
	)
	reminder, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reminder %s: %w", reminderID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return reminder, nil
}

// ListRemindersByParticipant returns active reminders sent or received by participantID.
func (s *SQLiteStore) ListRemindersByParticipant(ctx context.Context, participantID string) ([]models.Reminder, error) {
	return listReminders(ctx, s.db, remindersByParticipant, participantID, participantID)
}

// ListRemindersByGroup returns the active reminders of a group.
func (s *SQLiteStore) ListRemindersByGroup(ctx context.Context, groupID string) ([]models.Reminder, error) {
	return listReminders(ctx, s.db, remindersByGroup, groupID)
}

// UpdateReminderStatus sets the read and cleared flags of an active reminder.
func (s *SQLiteStore) UpdateReminderStatus(ctx context.Context, reminderID string, read, cleared bool) error {
	err := s.execOne(ctx,
		"UPDATE reminders SET is_read = ?, is_cleared = ? WHERE id = ? AND deleted_at IS NULL",
		read, cleared, reminderID,
	)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("reminder %s: %w", reminderID, err)
	}
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	return nil
}

// DeleteReminder soft-deletes a reminder.
func (s *SQLiteStore) DeleteReminder(ctx context.Context, reminderID string) error {
	err := s.execOne(ctx,
		"UPDATE reminders SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		now(), reminderID,
	)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("reminder %s: %w", reminderID, err)
	}
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	return nil
}

func listReminders(ctx context.Context, q querier, query string, args ...any) ([]models.Reminder, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []models.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, *reminder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminders: %w", err)
	}

	return reminders, nil
}

func scanReminder(row scanner) (*models.Reminder, error) {
	r := &models.Reminder{}
	var groupID, note sql.NullString
	var createdAt int64
	var deletedAt sql.NullInt64
	if err := row.Scan(&r.ID, &r.Amount, &r.FromID, &r.RecipientID, &groupID,
		&r.Read, &r.Cleared, &note, &createdAt, &deletedAt); err != nil {
		return nil, err
	}
	r.GroupID = groupID.String
	r.Note = note.String
	r.CreatedAt = fromUnix(createdAt)
	r.DeletedAt = fromNullUnix(deletedAt)
	return r, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/swisscoin/internal/models"
)

const messageColumns = "id, from_id, to_id, group_id, text, created_at, deleted_at"

const (
	messagesBetween = `SELECT ` + messageColumns + ` FROM messages
		 WHERE deleted_at IS NULL AND group_id IS NULL
		   AND ((from_id = ? AND to_id = ?) OR (from_id = ? AND to_id = ?))
		 ORDER BY created_at DESC, id`

	messagesByGroup = `SELECT ` + messageColumns + ` FROM messages
		 WHERE deleted_at IS NULL AND group_id = ?
		 ORDER BY created_at DESC, id`
)

// CreateMessage persists a new message.
func (s *SQLiteStore) CreateMessage(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (id, from_id, to_id, group_id, text, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		message.ID, message.FromID, nullString(message.ToID), nullString(message.GroupID), message.Text, message.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	return nil
}

// ListMessagesBetween returns the active direct messages exchanged by a and b.
func (s *SQLiteStore) ListMessagesBetween(ctx context.Context, a, b string) ([]models.Message, error) {
	return listMessages(ctx, s.db, messagesBetween, a, b, b, a)
}

// ListMessagesByGroup returns the active messages posted to a group.
func (s *SQLiteStore) ListMessagesByGroup(ctx context.Context, groupID string) ([]models.Message, error) {
	return listMessages(ctx, s.db, messagesByGroup, groupID)
}

func listMessages(ctx context.Context, q querier, query string, args ...any) ([]models.Message, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		m := models.Message{}
		var toID, groupID sql.NullString
		var createdAt int64
		var deletedAt sql.NullInt64
		if err := rows.Scan(&m.ID, &m.FromID, &toID, &groupID, &m.Text, &createdAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.ToID = toID.String
		m.GroupID = groupID.String
		m.CreatedAt = fromUnix(createdAt)
		m.DeletedAt = fromNullUnix(deletedAt)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return messages, nil
}

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

const participantColumns = "id, name, email, phone, created_at"

// CreateParticipant persists a new participant.
func (s *SQLiteStore) CreateParticipant(ctx context.Context, p *models.Participant) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO participants (id, name, email, phone, created_at) VALUES (?, ?, ?, ?, ?)",
		p.ID, p.Name, nullString(p.Email), nullString(p.Phone), p.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}

	return nil
}

// GetParticipant retrieves a participant by ID.
func (s *SQLiteStore) GetParticipant(ctx context.Context, participantID string) (*models.Participant, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+participantColumns+" FROM participants WHERE id = ?",
		participantID,
	)
	p, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("participant %s: %w", participantID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

// GetParticipantsByIDs retrieves several participants at once, keyed by ID.
// Unknown IDs are absent from the result.
func (s *SQLiteStore) GetParticipantsByIDs(ctx context.Context, ids []string) (map[string]*models.Participant, error) {
	result := make(map[string]*models.Participant, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+participantColumns+" FROM participants WHERE id IN ("+repeatPlaceholder(len(ids))+")",
		toArgs(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		result[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return result, nil
}

// ListParticipants returns every participant ordered by name.
func (s *SQLiteStore) ListParticipants(ctx context.Context) ([]*models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+participantColumns+" FROM participants ORDER BY name, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return participants, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanParticipant(row scanner) (*models.Participant, error) {
	p := &models.Participant{}
	var email, phone sql.NullString
	var createdAt int64
	if err := row.Scan(&p.ID, &p.Name, &email, &phone, &createdAt); err != nil {
		return nil, err
	}
	p.Email = email.String
	p.Phone = phone.String
	p.CreatedAt = fromUnix(createdAt)
	return p, nil
}

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

// CreateGroup persists a new group together with its members.
// The owner is always a member.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	if !group.HasMember(group.OwnerID) {
		group.Members = append([]string{group.OwnerID}, group.Members...)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, owner_id, created_at) VALUES (?, ?, ?, ?)",
		group.ID, group.Name, group.OwnerID, group.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	if err := insertGroupMembers(ctx, tx, group.ID, group.Members); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetGroup retrieves a group by ID, including its members.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, owner_id, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &group.OwnerID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	group.CreatedAt = fromUnix(createdAt)

	members, err := s.groupMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group.Members = members

	return group, nil
}

// ListGroupsByParticipant returns the groups participantID belongs to, ordered by name.
func (s *SQLiteStore) ListGroupsByParticipant(ctx context.Context, participantID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.owner_id, g.created_at
		 FROM groups g
		 JOIN group_members gm ON gm.group_id = g.id
		 WHERE gm.participant_id = ?
		 ORDER BY g.name, g.id`,
		participantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		var createdAt int64
		if err := rows.Scan(&group.ID, &group.Name, &group.OwnerID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		group.CreatedAt = fromUnix(createdAt)
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	rows.Close()

	for _, group := range groups {
		if group.Members, err = s.groupMembers(ctx, group.ID); err != nil {
			return nil, err
		}
	}

	return groups, nil
}

// AddGroupMembers adds participants to a group. Existing members are ignored.
func (s *SQLiteStore) AddGroupMembers(ctx context.Context, groupID string, participantIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", groupID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check group existence: %w", err)
	}

	if err := insertGroupMembers(ctx, tx, groupID, participantIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// insertGroupMembers adds ids to a group, skipping existing members.
func insertGroupMembers(ctx context.Context, q querier, groupID string, ids []string) error {
	for _, id := range ids {
		_, err := q.ExecContext(ctx,
			"INSERT OR IGNORE INTO group_members (group_id, participant_id) VALUES (?, ?)",
			groupID, id,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) groupMembers(ctx context.Context, groupID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT participant_id FROM group_members WHERE group_id = ? ORDER BY participant_id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}

	return members, nil
}

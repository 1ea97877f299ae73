package models

import "time"

// Message is a free-text conversation entry, sent either to one participant
// (ToID) or to a group (GroupID).
type Message struct {
	ID        string
	FromID    string
	ToID      string
	GroupID   string
	Text      string
	CreatedAt time.Time
	DeletedAt time.Time
}

// IsDeleted reports whether the message has been soft-deleted.
func (m *Message) IsDeleted() bool {
	return !m.DeletedAt.IsZero()
}

package models

import "time"

// Group is a named collection of participants.
// Expenses, settlements and reminders may reference a group.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// OwnerID is the participant who created the group.
	OwnerID string

	// Members holds participant IDs. There is no ordering guarantee.
	Members []string

	// CreatedAt is when the group was created.
	CreatedAt time.Time
}

// HasMember reports whether participantID belongs to the group.
func (g *Group) HasMember(participantID string) bool {
	for _, m := range g.Members {
		if m == participantID {
			return true
		}
	}
	return false
}

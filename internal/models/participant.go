package models

import "time"

// Participant represents a person who takes part in expenses.
// The ID never changes once created; Name, Email and Phone are display attributes.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string

	// Name is the display name. Used as the primary tie-break key when
	// distributing split remainders.
	Name string

	// Email is optional contact info.
	Email string

	// Phone is optional contact info.
	Phone string

	// CreatedAt is when the participant was created.
	CreatedAt time.Time
}

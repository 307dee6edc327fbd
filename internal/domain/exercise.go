package domain

import "time"

// Exercise is a single logged workout entry. UserID is a weak reference:
// the store does not enforce that it names an existing user, the handler
// checks existence before insert.
type Exercise struct {
	ID          string
	UserID      string
	Description string
	DurationMin int
	PerformedAt time.Time
	CreatedAt   time.Time
}

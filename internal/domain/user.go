package domain

import "time"

// User is a registered account that exercises are logged against.
// Users are never updated or deleted once created.
type User struct {
	ID        string
	Username  string
	CreatedAt time.Time
}

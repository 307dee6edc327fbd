// Package domain defines the business logic for the exercise tracker.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is returned when a user cannot be located.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUsername indicates the username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
)

// LogFilter narrows an exercise log query. Nil bounds are unbounded, both
// bounds are inclusive. A Limit of zero means no cap.
type LogFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// Store captures persistence operations over the user and exercise
// collections. Implementations signal a username uniqueness violation as
// ErrDuplicateUsername and report a missing user as (nil, nil).
type Store interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, userID string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	CreateExercise(ctx context.Context, exercise Exercise) error
	ListExercises(ctx context.Context, userID string, filter LogFilter) ([]Exercise, error)
}

// Service orchestrates tracker workflows.
type Service struct {
	store Store
}

// NewService constructs a Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateUser registers a username and returns the stored record.
func (s *Service) CreateUser(ctx context.Context, username string) (*User, error) {
	user := User{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns every registered user in store order.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.store.ListUsers(ctx)
}

// GetUser fetches by ID.
func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// AddExerciseInput captures the payload from the API layer. A zero
// PerformedAt means the caller supplied no date.
type AddExerciseInput struct {
	UserID      string
	Description string
	DurationMin int
	PerformedAt time.Time
}

// AddExercise records an exercise against a user. Callers verify the user
// exists first; the stored reference itself is weak.
func (s *Service) AddExercise(ctx context.Context, input AddExerciseInput) (*Exercise, error) {
	performedAt := input.PerformedAt
	if performedAt.IsZero() {
		performedAt = time.Now().UTC()
	}

	exercise := Exercise{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		Description: input.Description,
		DurationMin: input.DurationMin,
		PerformedAt: performedAt,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.CreateExercise(ctx, exercise); err != nil {
		return nil, err
	}
	return &exercise, nil
}

// UserLog fetches a user's exercises matching the filter, ascending by date.
func (s *Service) UserLog(ctx context.Context, userID string, filter LogFilter) ([]Exercise, error) {
	return s.store.ListExercises(ctx, userID, filter)
}

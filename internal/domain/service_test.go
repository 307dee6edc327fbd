package domain

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreateUserAssignsOpaqueID(t *testing.T) {
	store := newMemoryStore()
	service := NewService(store)

	user, err := service.CreateUser(context.Background(), "alice")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "alice", user.Username)
	require.False(t, user.CreatedAt.IsZero())
}

func TestCreateUserDuplicateDoesNotMutate(t *testing.T) {
	store := newMemoryStore()
	service := NewService(store)

	first, err := service.CreateUser(context.Background(), "alice")
	require.NoError(t, err)

	_, err = service.CreateUser(context.Background(), "alice")
	require.ErrorIs(t, err, ErrDuplicateUsername)

	require.Len(t, store.users, 1)
	require.Equal(t, first.ID, store.users[0].ID)
}

func TestGetUserNotFound(t *testing.T) {
	service := NewService(newMemoryStore())

	_, err := service.GetUser(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestAddExerciseDefaultsPerformedAt(t *testing.T) {
	store := newMemoryStore()
	service := NewService(store)

	user, err := service.CreateUser(context.Background(), "alice")
	require.NoError(t, err)

	exercise, err := service.AddExercise(context.Background(), AddExerciseInput{
		UserID:      user.ID,
		Description: "run",
		DurationMin: 30,
	})
	require.NoError(t, err)
	require.NotEmpty(t, exercise.ID)
	require.WithinDuration(t, time.Now().UTC(), exercise.PerformedAt, time.Minute)
}

func TestAddExerciseKeepsSuppliedDate(t *testing.T) {
	store := newMemoryStore()
	service := NewService(store)

	user, err := service.CreateUser(context.Background(), "alice")
	require.NoError(t, err)

	performedAt := time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)
	exercise, err := service.AddExercise(context.Background(), AddExerciseInput{
		UserID:      user.ID,
		Description: "run",
		DurationMin: 30,
		PerformedAt: performedAt,
	})
	require.NoError(t, err)
	require.True(t, exercise.PerformedAt.Equal(performedAt))
}

func TestUserLogAppliesBoundsAndLimit(t *testing.T) {
	store := newMemoryStore()
	service := NewService(store)

	user, err := service.CreateUser(context.Background(), "alice")
	require.NoError(t, err)

	days := []time.Time{
		time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, time.February, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, day := range days {
		_, err := service.AddExercise(context.Background(), AddExerciseInput{
			UserID:      user.ID,
			Description: "session",
			DurationMin: 30,
			PerformedAt: day,
		})
		require.NoError(t, err)
	}

	from := time.Date(2020, time.February, 1, 0, 0, 0, 0, time.UTC)
	entries, err := service.UserLog(context.Background(), user.ID, LogFilter{From: &from})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.True(t, entries[0].PerformedAt.Before(entries[1].PerformedAt))

	entries, err = service.UserLog(context.Background(), user.ID, LogFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC), entries[0].PerformedAt)
}

// memoryStore is an in-memory Store substitute for the Postgres repository.
type memoryStore struct {
	users     []User
	exercises []Exercise
}

func newMemoryStore() *memoryStore {
	return &memoryStore{}
}

func (m *memoryStore) CreateUser(ctx context.Context, user User) error {
	for _, existing := range m.users {
		if existing.Username == user.Username {
			return ErrDuplicateUsername
		}
	}
	m.users = append(m.users, user)
	return nil
}

func (m *memoryStore) GetUser(ctx context.Context, userID string) (*User, error) {
	for _, user := range m.users {
		if user.ID == userID {
			found := user
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) ListUsers(ctx context.Context) ([]User, error) {
	return append([]User(nil), m.users...), nil
}

func (m *memoryStore) CreateExercise(ctx context.Context, exercise Exercise) error {
	m.exercises = append(m.exercises, exercise)
	return nil
}

func (m *memoryStore) ListExercises(ctx context.Context, userID string, filter LogFilter) ([]Exercise, error) {
	matched := make([]Exercise, 0)
	for _, exercise := range m.exercises {
		if exercise.UserID != userID {
			continue
		}
		if filter.From != nil && exercise.PerformedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && exercise.PerformedAt.After(*filter.To) {
			continue
		}
		matched = append(matched, exercise)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].PerformedAt.Before(matched[j].PerformedAt)
	})
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

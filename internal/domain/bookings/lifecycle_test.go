package bookings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orders/internal/domain"
	"orders/internal/domain/bookings"
)

var fullSet = []bookings.Status{
	bookings.StatusPending,
	bookings.StatusConfirmed,
	bookings.StatusCancelled,
	bookings.StatusCompleted,
}

func TestLifecycle_CanTransition_FullProfile(t *testing.T) {
	l, err := bookings.NewLifecycle(fullSet, nil)
	require.NoError(t, err)

	testCases := []struct {
		from, to bookings.Status
		wantErr  error
	}{
		{from: bookings.StatusPending, to: bookings.StatusConfirmed},
		{from: bookings.StatusPending, to: bookings.StatusCancelled},
		{from: bookings.StatusPending, to: bookings.StatusPending},
		{from: bookings.StatusConfirmed, to: bookings.StatusCancelled},
		{from: bookings.StatusConfirmed, to: bookings.StatusCompleted},
		{from: bookings.StatusPending, to: bookings.StatusCompleted, wantErr: bookings.ErrInvalidTransition},
		{from: bookings.StatusConfirmed, to: bookings.StatusPending, wantErr: bookings.ErrInvalidTransition},
		{from: bookings.StatusCompleted, to: bookings.StatusCancelled, wantErr: bookings.ErrInvalidTransition},
		{from: bookings.StatusCompleted, to: bookings.StatusCompleted, wantErr: bookings.ErrInvalidTransition},
		{from: bookings.StatusCancelled, to: bookings.StatusConfirmed, wantErr: bookings.ErrInvalidTransition},
		{from: bookings.StatusCancelled, to: bookings.StatusCancelled, wantErr: bookings.ErrAlreadyCancelled},
		{from: bookings.StatusConfirmed, to: "shipped", wantErr: bookings.ErrInvalidStatus},
	}

	for _, tc := range testCases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			err := l.CanTransition(tc.from, tc.to)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLifecycle_ErrorKinds(t *testing.T) {
	l, err := bookings.NewLifecycle(fullSet, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, l.CanTransition(bookings.StatusCancelled, bookings.StatusCancelled), domain.ErrConflict)
	assert.ErrorIs(t, l.CanTransition(bookings.StatusCompleted, bookings.StatusCancelled), domain.ErrConflict)
	assert.ErrorIs(t, l.Validate("unknown"), domain.ErrBadRequest)
}

func TestLifecycle_ReducedProfiles(t *testing.T) {
	t.Run("without pending", func(t *testing.T) {
		l, err := bookings.NewLifecycle([]bookings.Status{
			bookings.StatusConfirmed, bookings.StatusCancelled, bookings.StatusCompleted,
		}, nil)
		require.NoError(t, err)

		assert.NoError(t, l.CanTransition(bookings.StatusConfirmed, bookings.StatusCancelled))
		assert.NoError(t, l.CanTransition(bookings.StatusConfirmed, bookings.StatusCompleted))
		assert.ErrorIs(t, l.Validate(bookings.StatusPending), bookings.ErrInvalidStatus)
	})

	t.Run("without confirmed", func(t *testing.T) {
		l, err := bookings.NewLifecycle([]bookings.Status{
			bookings.StatusPending, bookings.StatusCancelled, bookings.StatusCompleted,
		}, nil)
		require.NoError(t, err)

		assert.NoError(t, l.CanTransition(bookings.StatusPending, bookings.StatusCancelled))
		assert.NoError(t, l.CanTransition(bookings.StatusPending, bookings.StatusCompleted))
		assert.ErrorIs(t, l.CanTransition(bookings.StatusPending, bookings.StatusConfirmed), bookings.ErrInvalidStatus)
		assert.True(t, l.IsTerminal(bookings.StatusCompleted))
	})

	t.Run("explicit transitions", func(t *testing.T) {
		l, err := bookings.NewLifecycle(
			[]bookings.Status{"requested", bookings.StatusCancelled},
			map[bookings.Status][]bookings.Status{"requested": {bookings.StatusCancelled}},
		)
		require.NoError(t, err)

		assert.NoError(t, l.CanTransition("requested", bookings.StatusCancelled))
		assert.ErrorIs(t, l.CanTransition(bookings.StatusCancelled, "requested"), bookings.ErrInvalidTransition)
	})
}

func TestNewLifecycle_Invalid(t *testing.T) {
	testCases := []struct {
		name        string
		statuses    []bookings.Status
		transitions map[bookings.Status][]bookings.Status
	}{
		{name: "empty set"},
		{name: "duplicate", statuses: []bookings.Status{"a", "a"}},
		{name: "empty status", statuses: []bookings.Status{""}},
		{
			name:        "unknown target",
			statuses:    []bookings.Status{"a"},
			transitions: map[bookings.Status][]bookings.Status{"a": {"b"}},
		},
		{
			name:        "unknown source",
			statuses:    []bookings.Status{"a"},
			transitions: map[bookings.Status][]bookings.Status{"b": {"a"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := bookings.NewLifecycle(tc.statuses, tc.transitions)
			assert.Error(t, err)
		})
	}
}

func TestPatch(t *testing.T) {
	menuID := int64(9)
	status := bookings.StatusCancelled

	assert.True(t, bookings.Patch{}.IsEmpty())

	original := bookings.Booking{ID: 1, UserID: 2, MenuID: 3, Status: bookings.StatusConfirmed}

	patched := bookings.Patch{MenuID: &menuID}.Apply(original)
	assert.Equal(t, int64(9), patched.MenuID)
	assert.Equal(t, bookings.StatusConfirmed, patched.Status)
	assert.Equal(t, int64(2), patched.UserID)

	patched = bookings.Patch{Status: &status}.Apply(original)
	assert.Equal(t, int64(3), patched.MenuID)
	assert.True(t, patched.IsCancelled())
}

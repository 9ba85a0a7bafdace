package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renteazy/renteazy-server/internal/models"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

// newTestStore connects to the database named by TEST_DATABASE_URL.
// Tests needing it are skipped when the variable is unset.
func newTestStore(t *testing.T) *PostgresStore {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	store, err := NewPostgresStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.EnsureSchema(context.Background()))

	return store
}

func TestVotePollDB(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	poll := &models.Poll{
		Question: "repaint the lobby?",
		Options:  []string{"yes", "no", "later"},
	}
	require.NoError(t, store.CreatePoll(ctx, poll))
	t.Cleanup(func() { store.DeletePoll(ctx, poll.ID) })

	t.Run("first vote lands", func(t *testing.T) {
		require.NoError(t, store.VotePoll(ctx, poll.ID, 1, "user-a"))

		got, err := store.GetPoll(ctx, poll.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{0, 1, 0}, got.Votes)
		assert.Equal(t, []string{"user-a"}, got.Voters)
	})

	t.Run("second vote rejected, state unchanged", func(t *testing.T) {
		err := store.VotePoll(ctx, poll.ID, 0, "user-a")
		assert.ErrorIs(t, err, ErrAlreadyVoted)

		got, err := store.GetPoll(ctx, poll.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{0, 1, 0}, got.Votes)
		assert.Equal(t, []string{"user-a"}, got.Voters)
	})

	t.Run("other users still vote", func(t *testing.T) {
		require.NoError(t, store.VotePoll(ctx, poll.ID, 0, "user-b"))

		got, err := store.GetPoll(ctx, poll.ID)
		require.NoError(t, err)
		assert.Equal(t, got.TotalVotes(), int64(len(got.Voters)),
			"one counted vote per voter")
	})

	t.Run("option out of range", func(t *testing.T) {
		assert.ErrorIs(t, store.VotePoll(ctx, poll.ID, 3, "user-c"), ErrInvalidData)
		assert.ErrorIs(t, store.VotePoll(ctx, poll.ID, -1, "user-c"), ErrInvalidData)

		got, err := store.GetPoll(ctx, poll.ID)
		require.NoError(t, err)
		assert.NotContains(t, got.Voters, "user-c")
	})

	t.Run("unknown poll", func(t *testing.T) {
		assert.ErrorIs(t, store.VotePoll(ctx, uuid.New(), 0, "user-a"), ErrNotFound)
	})
}

func TestSetEventRSVPDB(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	event := &models.Event{
		Title: "diwali celebration",
		Date:  mustTime(t, "2026-11-08T18:00:00Z"),
	}
	require.NoError(t, store.CreateEvent(ctx, event))
	t.Cleanup(func() { store.DeleteEvent(ctx, event.ID) })

	userID := uuid.New()

	t.Run("first rsvp creates one row", func(t *testing.T) {
		require.NoError(t, store.SetEventRSVP(ctx, &models.EventRSVP{
			EventID: event.ID,
			UserID:  userID,
			Status:  models.RSVPYes,
		}))

		got, err := store.GetEvent(ctx, event.ID)
		require.NoError(t, err)
		require.Len(t, got.RSVPs, 1)
		assert.Equal(t, models.RSVPYes, got.RSVPs[0].Status)
	})

	t.Run("repeated rsvp overwrites in place", func(t *testing.T) {
		require.NoError(t, store.SetEventRSVP(ctx, &models.EventRSVP{
			EventID: event.ID,
			UserID:  userID,
			Status:  models.RSVPNo,
		}))

		got, err := store.GetEvent(ctx, event.ID)
		require.NoError(t, err)
		require.Len(t, got.RSVPs, 1, "the (event, user) pair stays unique")
		assert.Equal(t, models.RSVPNo, got.RSVPs[0].Status)
		assert.Equal(t, 0, got.AttendeeCount())
	})

	t.Run("other users add rows", func(t *testing.T) {
		require.NoError(t, store.SetEventRSVP(ctx, &models.EventRSVP{
			EventID: event.ID,
			UserID:  uuid.New(),
			Status:  models.RSVPYes,
		}))

		got, err := store.GetEvent(ctx, event.ID)
		require.NoError(t, err)
		assert.Len(t, got.RSVPs, 2)
		assert.Equal(t, 1, got.AttendeeCount())
	})

	t.Run("unknown event", func(t *testing.T) {
		err := store.SetEventRSVP(ctx, &models.EventRSVP{
			EventID: uuid.New(),
			UserID:  userID,
			Status:  models.RSVPYes,
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

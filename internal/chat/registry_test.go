package chat

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renteazy/renteazy-server/internal/models"
	"github.com/renteazy/renteazy-server/internal/storage"
)

// fakeRoomStore keeps rooms in a map keyed by invite code
type fakeRoomStore struct {
	rooms map[string]*models.ChatRoom
}

func newFakeRoomStore() *fakeRoomStore {
	return &fakeRoomStore{rooms: make(map[string]*models.ChatRoom)}
}

func (f *fakeRoomStore) CreateRoom(ctx context.Context, room *models.ChatRoom) error {
	if _, ok := f.rooms[room.Code]; ok {
		return storage.ErrDuplicateKey
	}
	f.rooms[room.Code] = room
	return nil
}

func (f *fakeRoomStore) GetRoom(ctx context.Context, code string) (*models.ChatRoom, error) {
	room, ok := f.rooms[code]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return room, nil
}

func (f *fakeRoomStore) DeleteRoom(ctx context.Context, code string) error {
	if _, ok := f.rooms[code]; !ok {
		return storage.ErrNotFound
	}
	delete(f.rooms, code)
	return nil
}

func (f *fakeRoomStore) AddRoomMember(ctx context.Context, code, userID string) error {
	room, ok := f.rooms[code]
	if !ok {
		return storage.ErrNotFound
	}
	if !room.HasMember(userID) {
		room.Members = append(room.Members, userID)
	}
	return nil
}

func (f *fakeRoomStore) RemoveRoomMember(ctx context.Context, code, userID string) error {
	room, ok := f.rooms[code]
	if !ok {
		return storage.ErrNotFound
	}
	members := room.Members[:0]
	for _, m := range room.Members {
		if m != userID {
			members = append(members, m)
		}
	}
	room.Members = members
	return nil
}

func TestCreateRoom(t *testing.T) {
	store := newFakeRoomStore()
	registry := NewRegistry(store, time.Minute)

	owner := uuid.New()
	room, err := registry.CreateRoom(context.Background(), owner)
	require.NoError(t, err)

	assert.Len(t, room.Code, models.RoomCodeLength)
	for _, c := range room.Code {
		assert.Contains(t, models.RoomCodeAlphabet, string(c))
	}
	assert.Equal(t, owner, room.CreatedBy)
	assert.Equal(t, []string{owner.String()}, room.Members, "creator is the first member")
}

func TestCreateRoomRegeneratesOnCollision(t *testing.T) {
	store := newFakeRoomStore()
	registry := NewRegistry(store, time.Minute)

	codes := []string{"SAMECD", "SAMECD", "FRESH1"}
	orig := generateCode
	generateCode = func() (string, error) {
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}
	defer func() { generateCode = orig }()

	// Occupy the colliding code.
	store.rooms["SAMECD"] = &models.ChatRoom{Code: "SAMECD"}

	room, err := registry.CreateRoom(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "FRESH1", room.Code)
}

func TestJoinUnknownRoom(t *testing.T) {
	store := newFakeRoomStore()
	registry := NewRegistry(store, time.Minute)

	ok, err := registry.Join(context.Background(), "NOSUCH", "user-a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, store.rooms, "a failed join creates nothing")
}

func TestJoinIsIdempotent(t *testing.T) {
	store := newFakeRoomStore()
	registry := NewRegistry(store, time.Minute)

	owner := uuid.New()
	room, err := registry.CreateRoom(context.Background(), owner)
	require.NoError(t, err)

	ok, err := registry.Join(context.Background(), room.Code, "user-a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = registry.Join(context.Background(), room.Code, "user-a")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, []string{owner.String(), "user-a"}, store.rooms[room.Code].Members)
}

func TestLeaveSchedulesEvictionWhenEmpty(t *testing.T) {
	store := newFakeRoomStore()
	registry := NewRegistry(store, time.Minute)

	owner := uuid.New()
	room, err := registry.CreateRoom(context.Background(), owner)
	require.NoError(t, err)

	require.NoError(t, registry.Leave(context.Background(), room.Code, owner.String()))

	// The room is empty but still present; deletion waits for the TTL.
	assert.Contains(t, store.rooms, room.Code)
	assert.NotNil(t, registry.empty.Get(room.Code))
}

func TestRejoinCancelsPendingEviction(t *testing.T) {
	store := newFakeRoomStore()
	registry := NewRegistry(store, time.Minute)

	owner := uuid.New()
	room, err := registry.CreateRoom(context.Background(), owner)
	require.NoError(t, err)

	require.NoError(t, registry.Leave(context.Background(), room.Code, owner.String()))
	require.NotNil(t, registry.empty.Get(room.Code))

	ok, err := registry.Join(context.Background(), room.Code, "user-b")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Nil(t, registry.empty.Get(room.Code))
}

func TestEvictIfEmpty(t *testing.T) {
	store := newFakeRoomStore()
	registry := NewRegistry(store, time.Minute)

	store.rooms["EMPTY1"] = &models.ChatRoom{Code: "EMPTY1"}
	store.rooms["BUSY01"] = &models.ChatRoom{Code: "BUSY01", Members: []string{"user-a"}}

	registry.evictIfEmpty("EMPTY1")
	registry.evictIfEmpty("BUSY01")

	assert.NotContains(t, store.rooms, "EMPTY1")
	assert.Contains(t, store.rooms, "BUSY01", "rooms with members survive eviction")
}

package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog/log"

	"github.com/renteazy/renteazy-server/internal/models"
	"github.com/renteazy/renteazy-server/internal/storage"
)

// maxCodeAttempts bounds code regeneration on collisions. The code
// space is 36^6, so more than a couple of collisions in a row means
// something is wrong.
const maxCodeAttempts = 10

// Store is the slice of storage the registry needs
type Store interface {
	CreateRoom(ctx context.Context, room *models.ChatRoom) error
	GetRoom(ctx context.Context, code string) (*models.ChatRoom, error)
	DeleteRoom(ctx context.Context, code string) error
	AddRoomMember(ctx context.Context, code, userID string) error
	RemoveRoomMember(ctx context.Context, code, userID string) error
}

// generateCode produces a candidate invite code. Swapped out in tests.
var generateCode = func() (string, error) {
	return GenerateInviteCode()
}

// Registry manages chat room membership and the eviction of rooms left
// without members. Rooms are never garbage-collected on leave; instead
// an empty room gets a TTL entry and is deleted when it expires still
// empty.
type Registry struct {
	store Store
	empty *ttlcache.Cache[string, time.Time]
}

// NewRegistry creates a registry. emptyTTL is how long an empty room
// survives before eviction.
func NewRegistry(store Store, emptyTTL time.Duration) *Registry {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, time.Time](emptyTTL),
		ttlcache.WithDisableTouchOnHit[string, time.Time](),
	)

	r := &Registry{
		store: store,
		empty: cache,
	}

	cache.OnEviction(func(ctx context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, time.Time]) {
		if reason != ttlcache.EvictionReasonExpired {
			return
		}
		r.evictIfEmpty(item.Key())
	})

	return r
}

// Start runs the eviction loop until the context is cancelled
func (r *Registry) Start(ctx context.Context) {
	go r.empty.Start()
	<-ctx.Done()
	r.empty.Stop()
}

// CreateRoom creates a room with a fresh unique invite code. The
// creator becomes the first member. On a code collision a new code is
// generated and the insert retried.
func (r *Registry) CreateRoom(ctx context.Context, owner uuid.UUID) (*models.ChatRoom, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, fmt.Errorf("generate invite code: %w", err)
		}

		room := &models.ChatRoom{
			Code:      code,
			CreatedBy: owner,
			Members:   []string{owner.String()},
		}

		err = r.store.CreateRoom(ctx, room)
		if errors.Is(err, storage.ErrDuplicateKey) {
			log.Debug().Str("code", code).Msg("Invite code collision, regenerating")
			continue
		}
		if err != nil {
			return nil, err
		}

		return room, nil
	}

	return nil, fmt.Errorf("could not allocate a unique invite code after %d attempts", maxCodeAttempts)
}

// Join adds a user to the room with the given code. Returns false when
// no such room exists; re-joining an existing member succeeds without
// changing membership.
func (r *Registry) Join(ctx context.Context, code, userID string) (bool, error) {
	err := r.store.AddRoomMember(ctx, code, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	// The room has a member again; cancel any pending eviction.
	r.empty.Delete(code)

	return true, nil
}

// Leave removes a user from the room. A room left with no members is
// scheduled for eviction rather than deleted immediately.
func (r *Registry) Leave(ctx context.Context, code, userID string) error {
	if err := r.store.RemoveRoomMember(ctx, code, userID); err != nil {
		return err
	}

	room, err := r.store.GetRoom(ctx, code)
	if err != nil {
		return err
	}

	if len(room.Members) == 0 {
		r.empty.Set(code, time.Now(), ttlcache.DefaultTTL)
		log.Debug().Str("code", code).Msg("Room empty, scheduled for eviction")
	}

	return nil
}

// evictIfEmpty deletes a room if it is still empty when its TTL fires
func (r *Registry) evictIfEmpty(code string) {
	ctx := context.Background()

	room, err := r.store.GetRoom(ctx, code)
	if err != nil {
		return
	}
	if len(room.Members) > 0 {
		return
	}

	if err := r.store.DeleteRoom(ctx, code); err != nil {
		log.Error().Err(err).Str("code", code).Msg("Failed to evict empty room")
		return
	}

	log.Info().Str("code", code).Msg("Evicted empty room")
}

package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renteazy/renteazy-server/internal/models"
	"github.com/renteazy/renteazy-server/internal/storage"
)

// fakeRoleStore keeps role assignments in a map keyed by uid
type fakeRoleStore struct {
	roles   map[string]models.Role
	assigns []string
}

func newFakeRoleStore() *fakeRoleStore {
	return &fakeRoleStore{roles: make(map[string]models.Role)}
}

func (f *fakeRoleStore) GetRole(ctx context.Context, uid string) (models.Role, error) {
	role, ok := f.roles[uid]
	if !ok {
		return "", storage.ErrNotFound
	}
	return role, nil
}

func (f *fakeRoleStore) AssignRole(ctx context.Context, uid string, role models.Role, assignedBy string) error {
	f.roles[uid] = role
	f.assigns = append(f.assigns, uid)
	return nil
}

func TestNormalizeID(t *testing.T) {
	t.Run("mongo id wins over all aliases", func(t *testing.T) {
		uid := NormalizeID(Profile{MongoID: "m1", UID: "u1", ID: "i1"})
		assert.Equal(t, "m1", uid)
	})

	t.Run("uid wins over plain id", func(t *testing.T) {
		uid := NormalizeID(Profile{UID: "u1", ID: "i1"})
		assert.Equal(t, "u1", uid)
	})

	t.Run("plain id as last resort", func(t *testing.T) {
		assert.Equal(t, "i1", NormalizeID(Profile{ID: "i1"}))
	})

	t.Run("empty profile yields empty uid", func(t *testing.T) {
		assert.Equal(t, "", NormalizeID(Profile{}))
	})
}

func TestResolveExistingRole(t *testing.T) {
	roles := newFakeRoleStore()
	roles.roles["u9"] = models.RoleOwner

	resolver := NewResolver(roles)

	user, err := resolver.Resolve(context.Background(), Profile{UID: "u9", Name: "Asha", Email: "asha@example.com"})
	require.NoError(t, err)

	assert.Equal(t, "u9", user.UID)
	assert.Equal(t, models.RoleOwner, user.Role)
	assert.Equal(t, "Asha", user.Name)
	assert.Empty(t, roles.assigns, "no provisioning when a role record exists")
}

func TestResolveProvisionsMissingRole(t *testing.T) {
	roles := newFakeRoleStore()
	resolver := NewResolver(roles)

	user, err := resolver.Resolve(context.Background(), Profile{UID: "u9"})
	require.NoError(t, err)

	assert.Equal(t, models.RoleTenant, user.Role)
	assert.Equal(t, []string{"u9"}, roles.assigns)
	assert.Equal(t, models.RoleTenant, roles.roles["u9"], "default role persisted")

	// A second resolve finds the persisted role and does not provision
	// again.
	again, err := resolver.Resolve(context.Background(), Profile{UID: "u9"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTenant, again.Role)
	assert.Len(t, roles.assigns, 1)
}

func TestResolveNameFallsBackToDisplayName(t *testing.T) {
	roles := newFakeRoleStore()
	roles.roles["u1"] = models.RoleTenant

	resolver := NewResolver(roles)

	user, err := resolver.Resolve(context.Background(), Profile{UID: "u1", DisplayName: "Ravi K"})
	require.NoError(t, err)
	assert.Equal(t, "Ravi K", user.Name)
}

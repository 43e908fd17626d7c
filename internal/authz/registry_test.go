package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	admin, _ := NewRole("Administrator", "Admin role")
	viewer, _ := NewRole("Viewer", "Viewer role")

	require.NoError(t, reg.Register(admin))
	require.NoError(t, reg.Register(viewer))

	got, err := reg.Role("Administrator")
	require.NoError(t, err)
	assert.Equal(t, admin, got)

	assert.True(t, reg.HasRole("Viewer"))
	assert.False(t, reg.HasRole("Editor"))

	_, err = reg.Role("Editor")
	assert.ErrorIs(t, err, ErrRoleNotFound)

	assert.Equal(t, []string{"Administrator", "Viewer"}, reg.RoleNames())
	assert.Equal(t, []Role{admin, viewer}, reg.Roles())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	admin, _ := NewRole("Administrator", "Admin role")
	require.NoError(t, reg.Register(admin))

	again, _ := NewRole("Administrator", "Different description")
	err := reg.Register(again)
	assert.ErrorIs(t, err, ErrDuplicateRole)

	// Original definition is untouched after the rejected insert.
	got, err := reg.Role("Administrator")
	require.NoError(t, err)
	assert.Equal(t, "Admin role", got.Description)
}

func TestRegistryReplace(t *testing.T) {
	reg := NewRegistry()
	admin, _ := NewRole("Administrator", "Admin role")
	require.NoError(t, reg.Register(admin))

	updated, _ := NewRole("Administrator", "Updated description")
	reg.Replace(updated)

	got, err := reg.Role("Administrator")
	require.NoError(t, err)
	assert.Equal(t, "Updated description", got.Description)
	assert.Equal(t, []string{"Administrator"}, reg.RoleNames())
}

func TestRegistryResolveRolesDropsUnknown(t *testing.T) {
	reg := NewRegistry()
	admin, _ := NewRole("Administrator", "Admin role")
	require.NoError(t, reg.Register(admin))

	roles := reg.ResolveRoles([]string{"Administrator", "Ghost", "Administrator"})
	assert.Equal(t, []Role{admin, admin}, roles)
}

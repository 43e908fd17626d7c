package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-io/gatehouse/internal/auth"
	"github.com/gatehouse-io/gatehouse/internal/authz"
	"github.com/gatehouse-io/gatehouse/internal/credstore"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

func newTestRegistry(t *testing.T) *authz.Registry {
	t.Helper()
	view, err := authz.NewPermission("view", "View data")
	require.NoError(t, err)
	del, err := authz.NewPermission("delete", "Delete data")
	require.NoError(t, err)
	admin, err := authz.NewRole("Administrator", "Full access", view, del)
	require.NoError(t, err)
	viewer, err := authz.NewRole("Viewer", "Read-only", view)
	require.NoError(t, err)

	registry := authz.NewRegistry()
	require.NoError(t, registry.Register(admin))
	require.NoError(t, registry.Register(viewer))
	return registry
}

func TestLoginBuildsAuthenticatedUser(t *testing.T) {
	store := credstore.NewMemStore()
	require.NoError(t, store.AddUser(context.Background(), "alice", "s3cret", "Administrator"))

	svc := auth.NewService(store, newTestRegistry(t), nil)
	user, err := svc.Login(context.Background(), "alice", "s3cret")
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Name)
	assert.True(t, user.Authenticated())
	assert.True(t, user.HasRoleNamed("Administrator"))
	assert.True(t, user.HasPermissionNamed("delete"))
}

func TestLoginFailsUniformly(t *testing.T) {
	store := credstore.NewMemStore()
	require.NoError(t, store.AddUser(context.Background(), "alice", "s3cret", ""))

	svc := auth.NewService(store, newTestRegistry(t), nil)

	_, err := svc.Login(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginDropsUnknownRoles(t *testing.T) {
	store := credstore.NewMemStore()
	require.NoError(t, store.AddUser(context.Background(), "bob", "pw", "Viewer,Ghost"))

	svc := auth.NewService(store, newTestRegistry(t), nil)
	user, err := svc.Login(context.Background(), "bob", "pw")
	require.NoError(t, err)

	assert.Equal(t, []string{"Viewer"}, user.RoleNames())
	assert.False(t, user.HasRoleNamed("Ghost"))
}

type recordingRepo struct {
	created []string
	deleted []string
	purged  int
}

func (r *recordingRepo) CreateSession(ctx context.Context, id, username string, expiresAt time.Time, ip, ua string) error {
	r.created = append(r.created, id)
	return nil
}

func (r *recordingRepo) DeleteSession(ctx context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *recordingRepo) PurgeSessions(ctx context.Context, now time.Time) (int64, error) {
	r.purged++
	return 0, nil
}

func TestSessionAuditLifecycle(t *testing.T) {
	repo := &recordingRepo{}
	svc := auth.NewService(credstore.NewMemStore(), newTestRegistry(t), repo)

	require.NoError(t, svc.RegisterSession(context.Background(), "sid-1", "alice", time.Now().Add(time.Hour), "127.0.0.1", "test"))
	require.NoError(t, svc.RemoveSession(context.Background(), "sid-1"))

	assert.Equal(t, []string{"sid-1"}, repo.created)
	assert.Equal(t, []string{"sid-1"}, repo.deleted)
}

func TestSessionAuditNilRepoIsNoop(t *testing.T) {
	svc := auth.NewService(credstore.NewMemStore(), newTestRegistry(t), nil)
	assert.NoError(t, svc.RegisterSession(context.Background(), "sid", "alice", time.Now(), "", ""))
	assert.NoError(t, svc.RemoveSession(context.Background(), "sid"))
}

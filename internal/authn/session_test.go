package authn_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-io/gatehouse/internal/authn"
	"github.com/gatehouse-io/gatehouse/internal/authz"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

func newTestSessionManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func requestWithSession(t *testing.T, sm *shared.SessionManager) (*http.Request, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	return req.WithContext(shared.ContextWithSession(req.Context(), sess)), sess
}

func TestSessionAuthenticatorRestoresUser(t *testing.T) {
	sm := newTestSessionManager(t)
	req, sess := requestWithSession(t, sm)

	view, _ := authz.NewPermission("view", "View permission")
	admin, _ := authz.NewRole("Administrator", "Admin role", view)
	user, err := authz.NewUser("alice", "alice", admin)
	require.NoError(t, err)
	user.Anonymous = false

	payload, err := user.MarshalSession()
	require.NoError(t, err)
	sess.SetUser(payload)

	restored, err := authn.SessionAuthenticator{}.Authenticate(req)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, "alice", restored.Name)
	assert.True(t, restored.Authenticated())
	assert.True(t, restored.HasPermissionNamed("view"))
}

func TestSessionAuthenticatorNoDecision(t *testing.T) {
	// No session in context at all.
	bare := httptest.NewRequest(http.MethodGet, "/", nil)
	user, err := authn.SessionAuthenticator{}.Authenticate(bare)
	require.NoError(t, err)
	assert.Nil(t, user)

	// Session present but no identity stored.
	sm := newTestSessionManager(t)
	req, _ := requestWithSession(t, sm)
	user, err = authn.SessionAuthenticator{}.Authenticate(req)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestSessionAuthenticatorRejectsGarbage(t *testing.T) {
	sm := newTestSessionManager(t)
	req, sess := requestWithSession(t, sm)
	sess.SetUser([]byte("{not json"))

	user, err := authn.SessionAuthenticator{}.Authenticate(req)
	assert.Error(t, err)
	assert.Nil(t, user)
}

func TestSessionUserSurvivesCommitAndReload(t *testing.T) {
	sm := newTestSessionManager(t)
	req, sess := requestWithSession(t, sm)

	user, err := authz.NewUser("bob", "bob")
	require.NoError(t, err)
	user.Anonymous = false
	payload, err := user.MarshalSession()
	require.NoError(t, err)
	sess.SetUser(payload)

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(req.Context(), res, req, sess))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: sess.ID})
	reloaded, err := sm.Load(context.Background(), next)
	require.NoError(t, err)
	next = next.WithContext(shared.ContextWithSession(next.Context(), reloaded))

	restored, err := authn.SessionAuthenticator{}.Authenticate(next)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, "bob", restored.Name)

	// Logout path: clearing the user leaves the next resolve anonymous.
	reloaded.ClearUser()
	restored, err = authn.SessionAuthenticator{}.Authenticate(next)
	require.NoError(t, err)
	assert.Nil(t, restored)
}

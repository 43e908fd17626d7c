package shared_test

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

	"github.com/gatehouse-io/gatehouse/internal/shared"
)

func newTestManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func loadByCookie(t *testing.T, sm *shared.SessionManager, id string) *shared.Session {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: id})
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	return sess
}

func TestFlashSurvivesRedirect(t *testing.T) {
	sm := newTestManager(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)

	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Welcome alice."})
	require.NoError(t, sm.Commit(context.Background(), httptest.NewRecorder(), req, sess))

	// The redirect target loads the session fresh from the cookie; the
	// flash written before the redirect must still be there.
	reloaded := loadByCookie(t, sm, sess.ID)
	flash := reloaded.PopFlash()
	require.NotNil(t, flash, "flash added before the redirect must be readable on the next request")
	assert.Equal(t, "Welcome alice.", flash.Message)

	// Committing the request that displayed the flash clears it.
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: sess.ID})
	require.NoError(t, sm.Commit(context.Background(), httptest.NewRecorder(), next, reloaded))
	assert.Nil(t, loadByCookie(t, sm, sess.ID).PopFlash())
}

func TestFlashShownOnlyOnce(t *testing.T) {
	sm := newTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)

	sess.AddFlash(shared.FlashMessage{Kind: "info", Message: "You have been logged out."})
	first := sess.PopFlash()
	require.NotNil(t, first)
	assert.Nil(t, sess.PopFlash())
}

func TestLoadRejectsUnknownSessionID(t *testing.T) {
	sm := newTestManager(t)

	sess := loadByCookie(t, sm, "forged-session-id")
	require.NotNil(t, sess)
	assert.NotEqual(t, "forged-session-id", sess.ID, "an ID without a store entry must not be adopted")
	assert.NotEmpty(t, sess.ID)
}

func TestSessionValuesRoundTrip(t *testing.T) {
	sm := newTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)

	sess.Set("csrf_token", "tok")
	sess.SetUser([]byte(`{"name":"alice"}`))
	require.NoError(t, sm.Commit(context.Background(), httptest.NewRecorder(), req, sess))

	reloaded := loadByCookie(t, sm, sess.ID)
	assert.Equal(t, "tok", reloaded.Get("csrf_token"))
	assert.JSONEq(t, `{"name":"alice"}`, string(reloaded.User()))
}

package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-io/gatehouse/internal/auth"
	"github.com/gatehouse-io/gatehouse/internal/authz"
	"github.com/gatehouse-io/gatehouse/internal/credstore"
	"github.com/gatehouse-io/gatehouse/internal/observability"
	"github.com/gatehouse-io/gatehouse/internal/shared"
	"github.com/gatehouse-io/gatehouse/internal/view"
)

type handlerFixture struct {
	handler *auth.Handler
	manager *shared.SessionManager
	store   credstore.Store
	repo    *recordingRepo
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)

	templates, err := view.NewEngine()
	require.NoError(t, err)

	store := credstore.NewMemStore()
	repo := &recordingRepo{}
	service := auth.NewService(store, newTestRegistry(t), repo)
	handler := auth.NewHandler(nil, service, templates, manager, shared.NewCSRFManager("csrf-secret"), observability.NewMetrics())

	return &handlerFixture{handler: handler, manager: manager, store: store, repo: repo}
}

func (f *handlerFixture) request(t *testing.T, method, target string, form url.Values) (*http.Request, *shared.Session) {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	sess, err := f.manager.Load(context.Background(), req)
	require.NoError(t, err)
	return req.WithContext(shared.ContextWithSession(req.Context(), sess)), sess
}

func TestShowLoginRendersForm(t *testing.T) {
	f := newHandlerFixture(t)
	req, _ := f.request(t, http.MethodGet, "/auth/login", nil)

	res := httptest.NewRecorder()
	f.handler.ShowLoginForTest(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `name="username"`)
	assert.Contains(t, res.Body.String(), `name="csrf_token"`)
}

func TestHandleLoginMissingFields(t *testing.T) {
	f := newHandlerFixture(t)
	req, _ := f.request(t, http.MethodPost, "/auth/login", url.Values{"username": {"alice"}})

	res := httptest.NewRecorder()
	f.handler.HandleLoginForTest(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "Username and password are required")
}

func TestHandleLoginRejectsBadCredentials(t *testing.T) {
	f := newHandlerFixture(t)
	require.NoError(t, f.store.AddUser(context.Background(), "alice", "s3cret", "Viewer"))

	cases := map[string]url.Values{
		"unknown user":   {"username": {"nobody"}, "password": {"whatever"}},
		"wrong password": {"username": {"alice"}, "password": {"wrong"}},
	}
	for name, form := range cases {
		t.Run(name, func(t *testing.T) {
			// Both cases must render the same message with the same status
			// so responses never reveal whether the username exists.
			req, sess := f.request(t, http.MethodPost, "/auth/login", form)
			res := httptest.NewRecorder()
			f.handler.HandleLoginForTest(res, req)

			assert.Equal(t, http.StatusBadRequest, res.Code)
			assert.Contains(t, res.Body.String(), "Invalid username or password")
			assert.Nil(t, sess.User())
		})
	}
}

func TestHandleLoginSuccess(t *testing.T) {
	f := newHandlerFixture(t)
	require.NoError(t, f.store.AddUser(context.Background(), "alice", "s3cret", "Administrator"))

	form := url.Values{"username": {"alice"}, "password": {"s3cret"}}
	req, sess := f.request(t, http.MethodPost, "/auth/login", form)

	res := httptest.NewRecorder()
	f.handler.HandleLoginForTest(res, req)

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/", res.Header().Get("Location"))

	require.NotNil(t, sess.User())
	restored, err := authz.UserFromSession(sess.User())
	require.NoError(t, err)
	assert.Equal(t, "alice", restored.Name)
	assert.True(t, restored.Authenticated())
	assert.True(t, restored.HasRoleNamed("Administrator"))

	assert.Equal(t, []string{sess.ID}, f.repo.created)
}

func TestHandleLogoutClearsUser(t *testing.T) {
	f := newHandlerFixture(t)
	require.NoError(t, f.store.AddUser(context.Background(), "alice", "s3cret", "Viewer"))

	loginReq, sess := f.request(t, http.MethodPost, "/auth/login", url.Values{"username": {"alice"}, "password": {"s3cret"}})
	f.handler.HandleLoginForTest(httptest.NewRecorder(), loginReq)
	require.NotNil(t, sess.User())

	logoutReq := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
	logoutReq = logoutReq.WithContext(shared.ContextWithSession(logoutReq.Context(), sess))
	res := httptest.NewRecorder()
	f.handler.HandleLogoutForTest(res, logoutReq)

	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Nil(t, sess.User())
	assert.Equal(t, []string{sess.ID}, f.repo.deleted)
}

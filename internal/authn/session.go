package authn

import (
	"net/http"

	"github.com/gatehouse-io/gatehouse/internal/authz"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// SessionAuthenticator reconstructs the identity stored in the server-side
// session at login. It is normally the first strategy in the chain.
type SessionAuthenticator struct{}

// Name identifies the strategy in logs.
func (SessionAuthenticator) Name() string { return "session" }

// Authenticate deserializes the session identity. A session without a user
// slot is no decision, not an error.
func (SessionAuthenticator) Authenticate(r *http.Request) (*authz.User, error) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return nil, nil
	}
	payload := sess.User()
	if len(payload) == 0 {
		return nil, nil
	}
	user, err := authz.UserFromSession(payload)
	if err != nil {
		return nil, err
	}
	if user.Anonymous {
		return nil, nil
	}
	return user, nil
}

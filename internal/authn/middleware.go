package authn

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gatehouse-io/gatehouse/internal/authz"
	"github.com/gatehouse-io/gatehouse/internal/observability"
)

type userContextKey struct{}

// ContextWithUser stores the resolved identity in context.
func ContextWithUser(ctx context.Context, user *authz.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the resolved identity; a missing identity is a
// fresh anonymous user, never nil.
func UserFromContext(ctx context.Context) *authz.User {
	if user, ok := userFromContext(ctx); ok {
		return user
	}
	return authz.AnonymousUser()
}

func userFromContext(ctx context.Context) (*authz.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*authz.User)
	return user, ok && user != nil
}

// Middleware wires identity resolution and guard enforcement for HTTP
// handlers.
type Middleware struct {
	Chain   *Chain
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// ResolveUser resolves the caller through the chain and stores the
// identity in the request context for downstream handlers.
func (m Middleware) ResolveUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := m.Chain.Resolve(r)
		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

// Require enforces a guard on the wrapped handler. The decision runs on
// every request against the freshly resolved identity; denials log the
// caller and the requirement and answer 403.
func (m Middleware) Require(guard *authz.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// ResolveUser usually ran earlier in the stack; only consult
			// the chain when the identity is not in context yet.
			user, ok := userFromContext(r.Context())
			if !ok {
				user = m.Chain.Resolve(r)
			}
			if err := guard.Check(user, r); err != nil {
				if m.Logger != nil {
					m.Logger.Warn("access denied",
						slog.String("user", user.Name),
						slog.String("required", guard.Requirement()),
						slog.String("path", r.URL.Path))
				}
				if m.Metrics != nil {
					m.Metrics.AuthzDenied(guard.Requirement())
				}
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

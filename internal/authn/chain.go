// Package authn resolves a caller identity for each request through an
// ordered chain of pluggable authentication strategies.
package authn

import (
	"log/slog"
	"net/http"

	"github.com/gatehouse-io/gatehouse/internal/authz"
)

// Authenticator is one authentication strategy. A nil user with nil error
// means "no decision"; the chain moves on to the next strategy. Errors are
// logged and treated as no decision, never aborting the chain.
type Authenticator interface {
	Name() string
	Authenticate(r *http.Request) (*authz.User, error)
}

// SuperuserRoleName is the role granted to the bypass identity.
const SuperuserRoleName = "Administrator"

// Chain evaluates authenticators in order and stops at the first resolved
// identity. Strategies are added during startup; the chain is read-only
// while serving requests.
type Chain struct {
	logger         *slog.Logger
	registry       *authz.Registry
	authenticators []Authenticator
	alwaysAdmin    bool
}

// NewChain constructs an empty chain. The registry supplies role
// definitions for the bypass identity.
func NewChain(logger *slog.Logger, registry *authz.Registry) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{logger: logger, registry: registry}
}

// Add inserts an authenticator at the given position. Positions beyond
// the current length append.
func (c *Chain) Add(a Authenticator, position int) {
	if position < 0 {
		position = 0
	}
	if position > len(c.authenticators) {
		position = len(c.authenticators)
	}
	c.authenticators = append(c.authenticators, nil)
	copy(c.authenticators[position+1:], c.authenticators[position:])
	c.authenticators[position] = a
}

// SetAlwaysAdmin toggles the bypass that resolves every request to the
// built-in superuser. This is a test/ops escape hatch reachable only from
// configuration; enabling it is logged loudly here and again per request.
func (c *Chain) SetAlwaysAdmin(enabled bool) {
	c.alwaysAdmin = enabled
	if enabled {
		c.logger.Warn("ALWAYS-ADMIN BYPASS ENABLED: every request resolves to the built-in superuser")
	}
}

// AlwaysAdmin reports whether the bypass is active.
func (c *Chain) AlwaysAdmin() bool {
	return c.alwaysAdmin
}

// Resolve produces the caller identity for a request. With no decision
// from any strategy the caller is a fresh anonymous user.
func (c *Chain) Resolve(r *http.Request) *authz.User {
	if c.alwaysAdmin {
		c.logger.Warn("always-admin bypass active, skipping authenticator chain",
			slog.String("path", r.URL.Path))
		return c.superuser()
	}
	for _, a := range c.authenticators {
		user, err := a.Authenticate(r)
		if err != nil {
			c.logger.Warn("authenticator failed, trying next",
				slog.String("authenticator", a.Name()), slog.Any("error", err))
			continue
		}
		if user != nil {
			return user
		}
	}
	return authz.AnonymousUser()
}

// superuser builds the bypass identity holding every registered role.
func (c *Chain) superuser() *authz.User {
	user := &authz.User{
		Name:        "superuser",
		Description: "Built-in always-admin identity",
		Anonymous:   false,
	}
	if c.registry != nil {
		user.Roles = c.registry.Roles()
	}
	return user
}

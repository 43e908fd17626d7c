package authz

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Guard errors.
var (
	// ErrGuardConfig indicates a guard built with zero or multiple
	// requirement kinds. Raised at construction, before any request.
	ErrGuardConfig = errors.New("authz: guard requires exactly one of roles, permission or predicate")
	// ErrDenied is the sentinel wrapped by every DeniedError.
	ErrDenied = errors.New("authz: access denied")
)

// GuardFunc is a custom authorization predicate.
type GuardFunc func(u *User, r *http.Request) bool

// DeniedError reports a failed authorization decision. It carries the
// resolved caller identity and the requirement for audit logging; it never
// reveals whether a username exists.
type DeniedError struct {
	UserName string
	Required string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("authz: access denied for %q: requires %s", e.UserName, e.Required)
}

func (e *DeniedError) Unwrap() error { return ErrDenied }

// Guard decides, per request, whether a caller may proceed. A guard is
// built with exactly one requirement: a set of role names (any-of match),
// a single permission name, or a custom predicate. The decision is made
// fresh on every call; identities change between requests via re-login.
type Guard struct {
	roles      []string
	permission string
	predicate  GuardFunc
}

// RequireRoles builds a guard allowing callers holding any one of the
// named roles.
func RequireRoles(names ...string) (*Guard, error) {
	if len(names) == 0 {
		return nil, ErrGuardConfig
	}
	return &Guard{roles: names}, nil
}

// RequirePermission builds a guard allowing callers whose effective
// permission set contains the named permission.
func RequirePermission(name string) (*Guard, error) {
	if name == "" {
		return nil, ErrGuardConfig
	}
	return &Guard{permission: name}, nil
}

// RequireFunc builds a guard delegating the decision to a predicate.
func RequireFunc(fn GuardFunc) (*Guard, error) {
	if fn == nil {
		return nil, ErrGuardConfig
	}
	return &Guard{predicate: fn}, nil
}

// NewGuard builds a guard from an explicit requirement combination,
// enforcing that exactly one is present. The Require* constructors are the
// usual entry points; this form exists for configuration-driven wiring.
func NewGuard(roles []string, permission string, predicate GuardFunc) (*Guard, error) {
	count := 0
	if len(roles) > 0 {
		count++
	}
	if permission != "" {
		count++
	}
	if predicate != nil {
		count++
	}
	if count != 1 {
		return nil, ErrGuardConfig
	}
	return &Guard{roles: roles, permission: permission, predicate: predicate}, nil
}

// Check evaluates the guard for the given caller. A nil error means the
// caller may proceed; otherwise a *DeniedError describes the mismatch.
func (g *Guard) Check(u *User, r *http.Request) error {
	if u == nil {
		u = AnonymousUser()
	}
	switch {
	case len(g.roles) > 0:
		for _, name := range g.roles {
			if u.HasRoleNamed(name) {
				return nil
			}
		}
	case g.permission != "":
		if u.HasPermissionNamed(g.permission) {
			return nil
		}
	default:
		if g.predicate(u, r) {
			return nil
		}
	}
	return &DeniedError{UserName: u.Name, Required: g.Requirement()}
}

// Requirement describes what the guard demands, for audit logs and error
// messages.
func (g *Guard) Requirement() string {
	switch {
	case len(g.roles) > 0:
		return "any role of [" + strings.Join(g.roles, ", ") + "]"
	case g.permission != "":
		return "permission " + g.permission
	default:
		return "custom predicate"
	}
}

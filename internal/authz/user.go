package authz

import (
	"encoding/json"
	"fmt"
)

// User represents a caller identity, authenticated or anonymous. A user's
// roles are a snapshot resolved at authentication time; later registry
// changes do not reach an already-issued session until re-login.
type User struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Anonymous   bool           `json:"is_anonymous"`
	Roles       []Role         `json:"roles"`
	Properties  map[string]any `json:"properties,omitempty"`
}

// NewUser constructs a User. Name and description are required. The user
// starts anonymous; the login flow flips the flag once credentials are
// verified.
func NewUser(name, description string, roles ...Role) (*User, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: user name required", ErrValidation)
	}
	if description == "" {
		return nil, fmt.Errorf("%w: user description required", ErrValidation)
	}
	return &User{Name: name, Description: description, Anonymous: true, Roles: roles}, nil
}

// AnonymousUser returns a fresh anonymous identity. A new value is built
// per call so request handling never shares mutable state.
func AnonymousUser() *User {
	return &User{Name: "anonymous", Description: "Anonymous user", Anonymous: true}
}

// Authenticated reports whether the user carries a verified identity.
func (u *User) Authenticated() bool {
	return !u.Anonymous
}

// HasRole reports whether the user holds a role by full value equality,
// including description and permission list. Guard logic matches by name
// instead (HasRoleNamed) so refreshed role definitions do not invalidate
// sessions issued before the refresh.
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r.Equal(role) {
			return true
		}
	}
	return false
}

// HasRoleNamed reports whether the user holds a role by name.
func (u *User) HasRoleNamed(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// HasPermission reports whether any of the user's roles contains the
// permission.
func (u *User) HasPermission(p Permission) bool {
	for _, r := range u.Roles {
		for _, held := range r.Permissions {
			if held == p {
				return true
			}
		}
	}
	return false
}

// HasPermissionNamed reports whether any of the user's roles contains a
// permission by name.
func (u *User) HasPermissionNamed(name string) bool {
	for _, r := range u.Roles {
		if r.HasPermissionNamed(name) {
			return true
		}
	}
	return false
}

// RoleNames returns the user's role names in held order.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// PermissionNames flattens permission names across roles, preserving role
// order then permission order. Names repeated across roles are kept.
func (u *User) PermissionNames() []string {
	var names []string
	for _, r := range u.Roles {
		for _, p := range r.Permissions {
			names = append(names, p.Name)
		}
	}
	return names
}

// UniquePermissionNames returns the effective permission set: flattened
// names with duplicates removed, first occurrence order.
func (u *User) UniquePermissionNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range u.Roles {
		for _, p := range r.Permissions {
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			names = append(names, p.Name)
		}
	}
	return names
}

// MarshalSession serializes the user for session storage. Timestamps and
// other transient fields never enter the session payload.
func (u *User) MarshalSession() ([]byte, error) {
	return json.Marshal(u)
}

// UserFromSession deserializes a session payload back into a User.
func UserFromSession(data []byte) (*User, error) {
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("authz: decode session user: %w", err)
	}
	return &u, nil
}

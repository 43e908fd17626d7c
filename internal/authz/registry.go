package authz

import (
	"errors"
	"fmt"
	"sync"
)

// Registry errors.
var (
	// ErrRoleNotFound indicates a lookup for an unregistered role name.
	ErrRoleNotFound = errors.New("authz: role not found")
	// ErrDuplicateRole indicates a Register call for an already-known name.
	ErrDuplicateRole = errors.New("authz: role already registered")
)

// Registry is the catalog of known roles, keyed by name. It is constructed
// at startup and shared by reference with every component that resolves
// role names. Reads are safe for concurrent use; registration is expected
// during startup or explicit administrative action only.
type Registry struct {
	mu    sync.RWMutex
	roles map[string]Role
	order []string
}

// NewRegistry constructs an empty role registry.
func NewRegistry() *Registry {
	return &Registry{roles: make(map[string]Role)}
}

// Register adds a role. Registering a name twice is rejected; use Replace
// to overwrite a definition deliberately.
func (reg *Registry) Register(role Role) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, ok := reg.roles[role.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRole, role.Name)
	}
	reg.roles[role.Name] = role
	reg.order = append(reg.order, role.Name)
	return nil
}

// Replace inserts or overwrites a role definition. Registration order is
// kept from the first insert.
func (reg *Registry) Replace(role Role) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, ok := reg.roles[role.Name]; !ok {
		reg.order = append(reg.order, role.Name)
	}
	reg.roles[role.Name] = role
}

// Role returns the role registered under name.
func (reg *Registry) Role(name string) (Role, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	role, ok := reg.roles[name]
	if !ok {
		return Role{}, fmt.Errorf("%w: %s", ErrRoleNotFound, name)
	}
	return role, nil
}

// HasRole reports whether a role name is registered.
func (reg *Registry) HasRole(name string) bool {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	_, ok := reg.roles[name]
	return ok
}

// Roles returns a snapshot of all roles in registration order.
func (reg *Registry) Roles() []Role {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	roles := make([]Role, 0, len(reg.order))
	for _, name := range reg.order {
		roles = append(roles, reg.roles[name])
	}
	return roles
}

// RoleNames returns a snapshot of all role names in registration order.
func (reg *Registry) RoleNames() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	names := make([]string, len(reg.order))
	copy(names, reg.order)
	return names
}

// ResolveRoles maps role names to registered roles. Unknown names are
// dropped silently; stored credentials may reference roles that were
// removed from the catalog since the account was created.
func (reg *Registry) ResolveRoles(names []string) []Role {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	roles := make([]Role, 0, len(names))
	for _, name := range names {
		if role, ok := reg.roles[name]; ok {
			roles = append(roles, role)
		}
	}
	return roles
}

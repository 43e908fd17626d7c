package authz

import "fmt"

// Role represents a named bundle of permissions. Identity is the name.
// Permissions keep insertion order for display.
type Role struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions"`
}

// NewRole constructs a Role. Name and description are required. Permissions
// that repeat an already-held name are skipped.
func NewRole(name, description string, permissions ...Permission) (Role, error) {
	if name == "" {
		return Role{}, fmt.Errorf("%w: role name required", ErrValidation)
	}
	if description == "" {
		return Role{}, fmt.Errorf("%w: role description required", ErrValidation)
	}
	role := Role{Name: name, Description: description}
	for _, p := range permissions {
		role.AddPermission(p)
	}
	return role, nil
}

// AddPermission appends a permission, ignoring duplicates by name.
func (r *Role) AddPermission(p Permission) {
	if r.HasPermissionNamed(p.Name) {
		return
	}
	r.Permissions = append(r.Permissions, p)
}

// HasPermissionNamed reports whether the role holds a permission by name.
func (r Role) HasPermissionNamed(name string) bool {
	for _, p := range r.Permissions {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Equal compares two roles by full value: name, description and the exact
// permission list. Most callers want name identity instead; see
// User.HasRoleNamed.
func (r Role) Equal(other Role) bool {
	if r.Name != other.Name || r.Description != other.Description {
		return false
	}
	if len(r.Permissions) != len(other.Permissions) {
		return false
	}
	for i, p := range r.Permissions {
		if p != other.Permissions[i] {
			return false
		}
	}
	return true
}

// Package authz holds the role/permission data model and the per-request
// access guard.
package authz

import (
	"errors"
	"fmt"
)

// ErrValidation indicates a malformed Permission, Role or User construction.
var ErrValidation = errors.New("authz: validation failed")

// Permission represents an atomic named capability. Identity is the name;
// the description is display-only. Permissions are immutable once built.
type Permission struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NewPermission constructs a Permission. Both fields are required.
func NewPermission(name, description string) (Permission, error) {
	if name == "" {
		return Permission{}, fmt.Errorf("%w: permission name required", ErrValidation)
	}
	if description == "" {
		return Permission{}, fmt.Errorf("%w: permission description required", ErrValidation)
	}
	return Permission{Name: name, Description: description}, nil
}

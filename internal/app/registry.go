package app

import (
	"fmt"

	"github.com/gatehouse-io/gatehouse/internal/authz"
)

// NewRegistry builds the role registry the server and CLI share. Roles are
// defined here rather than in the database so that a deployment's
// authorization surface is reviewable in one place.
func NewRegistry() (*authz.Registry, error) {
	view, err := authz.NewPermission("view", "Read application data")
	if err != nil {
		return nil, err
	}
	edit, err := authz.NewPermission("edit", "Modify application data")
	if err != nil {
		return nil, err
	}
	del, err := authz.NewPermission("delete", "Remove application data")
	if err != nil {
		return nil, err
	}

	registry := authz.NewRegistry()
	roles := []struct {
		name        string
		description string
		permissions []authz.Permission
	}{
		{"Administrator", "Full access", []authz.Permission{view, edit, del}},
		{"User", "Read and write access", []authz.Permission{view, edit}},
		{"Viewer", "Read-only access", []authz.Permission{view}},
	}
	for _, def := range roles {
		role, err := authz.NewRole(def.name, def.description, def.permissions...)
		if err != nil {
			return nil, fmt.Errorf("app: build role %s: %w", def.name, err)
		}
		if err := registry.Register(role); err != nil {
			return nil, fmt.Errorf("app: register role %s: %w", def.name, err)
		}
	}
	return registry, nil
}

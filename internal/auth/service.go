// Package auth implements the login and logout flow on top of the
// credential store and the role registry.
package auth

import (
	"context"
	"time"

	"github.com/gatehouse-io/gatehouse/internal/authz"
	"github.com/gatehouse-io/gatehouse/internal/credstore"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	store    credstore.Store
	registry *authz.Registry
	repo     Repository
}

// NewService constructs a new Service. The repository records session
// audit rows and may be nil when auditing is not wired.
func NewService(store credstore.Store, registry *authz.Registry, repo Repository) *Service {
	return &Service{store: store, registry: registry, repo: repo}
}

// Login verifies credentials and builds the authenticated identity. A
// failed login returns shared.ErrInvalidCredentials regardless of whether
// the username exists; stored role names missing from the registry are
// dropped silently.
func (s *Service) Login(ctx context.Context, username, password string) (*authz.User, error) {
	data, err := s.store.GetUser(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, shared.ErrInvalidCredentials
	}
	user, err := authz.NewUser(data.Username, data.Username, s.registry.ResolveRoles(data.Roles)...)
	if err != nil {
		return nil, err
	}
	user.Anonymous = false
	return user, nil
}

// RegisterSession persists the session audit row.
func (s *Service) RegisterSession(ctx context.Context, id, username string, expiresAt time.Time, ip, ua string) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.CreateSession(ctx, id, username, expiresAt, ip, ua)
}

// RemoveSession deletes a session audit row.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.DeleteSession(ctx, id)
}

// Package users exposes administrative account listing over the
// credential store. It answers "who has an account"; it never answers
// authentication queries.
package users

import (
	"context"
	"time"

	"github.com/gatehouse-io/gatehouse/internal/credstore"
)

// Account is the administrative view of a credential record. The password
// hash never leaves the store through this package.
type Account struct {
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

// Service handles account listing logic.
type Service struct {
	store credstore.Store
}

// NewService builds Service instance.
func NewService(store credstore.Store) *Service {
	return &Service{store: store}
}

// ListAccounts returns all accounts with their role names expanded.
func (s *Service) ListAccounts(ctx context.Context) ([]Account, error) {
	creds, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	accounts := make([]Account, len(creds))
	for i, c := range creds {
		accounts[i] = Account{
			Username:  c.Username,
			Roles:     credstore.SplitRoles(c.Roles),
			CreatedAt: c.CreatedAt,
		}
	}
	return accounts, nil
}

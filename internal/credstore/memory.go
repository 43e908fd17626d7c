package credstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemStore is an in-memory Store for tests and the demo binary. The
// mutex serializes writes so concurrent AddUser calls for one username
// cannot both succeed, mirroring the database's uniqueness guarantee.
type MemStore struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

// NewMemStore constructs an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{creds: make(map[string]Credential)}
}

// AddUser hashes the password and stores a new record.
func (s *MemStore) AddUser(ctx context.Context, username, password, roles string) error {
	username = NormalizeUsername(username)
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("credstore: hash password: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.creds[username]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateUser, username)
	}
	s.creds[username] = Credential{
		Username:     username,
		PasswordHash: hash,
		Roles:        roles,
		CreatedAt:    time.Now().UTC(),
	}
	return nil
}

// DeleteUser removes the record for username.
func (s *MemStore) DeleteUser(ctx context.Context, username string) error {
	username = NormalizeUsername(username)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.creds[username]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}
	delete(s.creds, username)
	return nil
}

// HasUser reports whether the username exists.
func (s *MemStore) HasUser(ctx context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.creds[NormalizeUsername(username)]
	return ok, nil
}

// GetUser verifies login credentials. Both unknown username and wrong
// password return (nil, nil).
func (s *MemStore) GetUser(ctx context.Context, username, password string) (*UserData, error) {
	username = NormalizeUsername(username)
	s.mu.RLock()
	cred, ok := s.creds[username]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !CheckPassword(cred.PasswordHash, password) {
		return nil, nil
	}
	return &UserData{Username: username, Roles: SplitRoles(cred.Roles)}, nil
}

// ChangePassword re-hashes and overwrites the stored hash.
func (s *MemStore) ChangePassword(ctx context.Context, username, password string) error {
	username = NormalizeUsername(username)
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("credstore: hash password: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.creds[username]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}
	cred.PasswordHash = hash
	s.creds[username] = cred
	return nil
}

// VerifyPassword checks a password for a known account.
func (s *MemStore) VerifyPassword(ctx context.Context, username, password string) (bool, error) {
	username = NormalizeUsername(username)
	s.mu.RLock()
	cred, ok := s.creds[username]
	s.mu.RUnlock()
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}
	return CheckPassword(cred.PasswordHash, password), nil
}

// ListUsers returns all records ordered by creation time.
func (s *MemStore) ListUsers(ctx context.Context) ([]Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creds := make([]Credential, 0, len(s.creds))
	for _, c := range s.creds {
		creds = append(creds, c)
	}
	sort.Slice(creds, func(i, j int) bool {
		if creds[i].CreatedAt.Equal(creds[j].CreatedAt) {
			return creds[i].Username < creds[j].Username
		}
		return creds[i].CreatedAt.Before(creds[j].CreatedAt)
	})
	return creds, nil
}

var _ Store = (*MemStore)(nil)

// Package credstore persists username/password-hash/role credentials and
// verifies login attempts.
package credstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
)

// Store errors. Only administrative operations surface ErrUnknownUser;
// GetUser stays silent on unknown usernames so login responses cannot be
// used to enumerate accounts.
var (
	ErrDuplicateUser = errors.New("credstore: user already exists")
	ErrUnknownUser   = errors.New("credstore: user does not exist")
)

// bcrypt work factor for stored credentials.
const hashCost = bcrypt.DefaultCost

// Credential is a persisted account record. Roles are stored denormalized
// as a comma-joined string of role names; validity against the role
// catalog is the caller's concern, not the store's.
type Credential struct {
	Username     string
	PasswordHash []byte
	Roles        string
	CreatedAt    time.Time
}

// UserData is the successful result of a login lookup.
type UserData struct {
	Username string
	Roles    []string
}

// Store is the durable credential mapping. Implementations must keep
// usernames unique under concurrent writes; the backing store's native
// uniqueness mechanism is the enforcement point.
type Store interface {
	// AddUser hashes the password and persists a new record. Returns
	// ErrDuplicateUser when the username is taken.
	AddUser(ctx context.Context, username, password, roles string) error
	// DeleteUser removes a record. Returns ErrUnknownUser when absent.
	DeleteUser(ctx context.Context, username string) error
	// HasUser reports whether a username exists. Never errors on absence.
	HasUser(ctx context.Context, username string) (bool, error)
	// GetUser verifies credentials for the login flow. Unknown username
	// and wrong password are indistinguishable: both return (nil, nil).
	GetUser(ctx context.Context, username, password string) (*UserData, error)
	// ChangePassword re-hashes and overwrites. Returns ErrUnknownUser
	// when absent.
	ChangePassword(ctx context.Context, username, password string) error
	// VerifyPassword checks a password for a known account. Returns
	// ErrUnknownUser when absent; administrative use only, never wired
	// into the login flow.
	VerifyPassword(ctx context.Context, username, password string) (bool, error)
	// ListUsers returns all records for administrative listing. Must not
	// be used to answer authentication queries.
	ListUsers(ctx context.Context) ([]Credential, error)
}

// NormalizeUsername trims whitespace and applies NFC so visually equal
// usernames map to one account instead of silently coexisting.
func NormalizeUsername(username string) string {
	return norm.NFC.String(strings.TrimSpace(username))
}

// HashPassword derives a salted bcrypt hash for storage.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), hashCost)
}

// CheckPassword compares a candidate password against a stored hash in
// constant time. Passwords are never compared by raw byte equality.
func CheckPassword(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// SplitRoles expands the denormalized role column into an ordered name
// list.
func SplitRoles(roles string) []string {
	if roles == "" {
		return nil
	}
	parts := strings.Split(roles, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		names = append(names, strings.TrimSpace(p))
	}
	return names
}

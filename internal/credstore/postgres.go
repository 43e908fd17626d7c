package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code raised when the primary key
// on credentials.username rejects a concurrent or repeated insert.
const uniqueViolation = "23505"

// PGStore is the canonical Store backed by PostgreSQL. Username
// uniqueness is enforced by the primary key, so two concurrent AddUser
// calls for the same name cannot both succeed.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PostgreSQL-backed store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// AddUser hashes the password and inserts the record.
func (s *PGStore) AddUser(ctx context.Context, username, password, roles string) error {
	username = NormalizeUsername(username)
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("credstore: hash password: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO credentials (username, password_hash, roles, created_at) VALUES ($1, $2, $3, $4)`,
		username, hash, roles, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateUser, username)
		}
		return err
	}
	return nil
}

// DeleteUser removes the record for username.
func (s *PGStore) DeleteUser(ctx context.Context, username string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM credentials WHERE username = $1`, NormalizeUsername(username))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}
	return nil
}

// HasUser reports whether the username exists.
func (s *PGStore) HasUser(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM credentials WHERE username = $1)`,
		NormalizeUsername(username)).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// GetUser verifies login credentials. Both unknown username and wrong
// password return (nil, nil).
func (s *PGStore) GetUser(ctx context.Context, username, password string) (*UserData, error) {
	username = NormalizeUsername(username)
	var hash []byte
	var roles string
	err := s.pool.QueryRow(ctx,
		`SELECT password_hash, roles FROM credentials WHERE username = $1`,
		username).Scan(&hash, &roles)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if !CheckPassword(hash, password) {
		return nil, nil
	}
	return &UserData{Username: username, Roles: SplitRoles(roles)}, nil
}

// ChangePassword re-hashes and overwrites the stored hash.
func (s *PGStore) ChangePassword(ctx context.Context, username, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("credstore: hash password: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE credentials SET password_hash = $1 WHERE username = $2`,
		hash, NormalizeUsername(username))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}
	return nil
}

// VerifyPassword checks a password for a known account.
func (s *PGStore) VerifyPassword(ctx context.Context, username, password string) (bool, error) {
	username = NormalizeUsername(username)
	var hash []byte
	err := s.pool.QueryRow(ctx,
		`SELECT password_hash FROM credentials WHERE username = $1`,
		username).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, fmt.Errorf("%w: %s", ErrUnknownUser, username)
		}
		return false, err
	}
	return CheckPassword(hash, password), nil
}

// ListUsers returns all records ordered by creation time.
func (s *PGStore) ListUsers(ctx context.Context) ([]Credential, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT username, password_hash, roles, created_at FROM credentials ORDER BY created_at, username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var creds []Credential
	for rows.Next() {
		var c Credential
		if err := rows.Scan(&c.Username, &c.PasswordHash, &c.Roles, &c.CreatedAt); err != nil {
			return nil, err
		}
		creds = append(creds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return creds, nil
}

var _ Store = (*PGStore)(nil)

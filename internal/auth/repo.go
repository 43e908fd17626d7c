package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatehouse-io/gatehouse/internal/platform/db"
)

// Repository defines persistence for login session audit rows.
type Repository interface {
	CreateSession(ctx context.Context, id, username string, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
	PurgeSessions(ctx context.Context, now time.Time) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// CreateSession persists a new login session for auditing.
func (r *PGRepository) CreateSession(ctx context.Context, id, username string, expiresAt time.Time, ip, ua string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (id, username, created_at, expires_at, ip, ua) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, username, time.Now().UTC(), expiresAt.UTC(), ip, ua)
	return err
}

// DeleteSession removes a session row on logout.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// PurgeSessions removes expired rows and rows whose account no longer
// exists, in one transaction, and reports how many were dropped.
func (r *PGRepository) PurgeSessions(ctx context.Context, now time.Time) (int64, error) {
	var purged int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		expired, err := tx.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now.UTC())
		if err != nil {
			return err
		}
		orphaned, err := tx.Exec(ctx,
			`DELETE FROM sessions WHERE username NOT IN (SELECT username FROM credentials)`)
		if err != nil {
			return err
		}
		purged = expired.RowsAffected() + orphaned.RowsAffected()
		return nil
	})
	return purged, err
}

var _ Repository = (*PGRepository)(nil)

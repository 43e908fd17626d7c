package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gatehouse-io/gatehouse/internal/auth"
)

// SessionsPurgeJob deletes stale session audit rows.
type SessionsPurgeJob struct {
	repo   auth.Repository
	logger *slog.Logger
}

// NewSessionsPurgeJob constructs the purge job.
func NewSessionsPurgeJob(repo auth.Repository, logger *slog.Logger) *SessionsPurgeJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionsPurgeJob{repo: repo, logger: logger}
}

// Handle processes TaskSessionsPurge tasks.
func (j *SessionsPurgeJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SessionsPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	before := payload.Before
	if before.IsZero() {
		before = time.Now()
	}
	purged, err := j.repo.PurgeSessions(ctx, before)
	if err != nil {
		j.logger.Error("purge sessions", slog.Any("error", err))
		return err
	}
	if purged > 0 {
		j.logger.Info("purged stale sessions", slog.Int64("count", purged))
	}
	return nil
}

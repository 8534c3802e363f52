package repository

import (
	"context"
	"time"

	"journal-backend/internal/infra"
	"journal-backend/internal/infra/db"
	"journal-backend/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ClaimedJob is one queue entry handed to the worker for processing.
type ClaimedJob struct {
	ID       uuid.UUID
	Kind     string
	Payload  []byte
	Attempts int32
}

type JobQueueRepository struct {
	maxAttempts int32
}

func NewJobQueueRepository(maxAttempts int32) *JobQueueRepository {
	return &JobQueueRepository{maxAttempts: maxAttempts}
}

func (r *JobQueueRepository) Enqueue(ctx context.Context, tx db.DBTX, kind string, payload []byte, runAt time.Time) (uuid.UUID, error) {
	const query = `
		INSERT INTO job_queue (kind, payload, run_at, status)
		VALUES ($1, $2, $3, 'queued')
		RETURNING id`

	var id uuid.UUID
	err := tx.QueryRow(ctx, query, kind, payload, runAt).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to enqueue job", err)
	}
	return id, nil
}

// ClaimNext takes the oldest due queued entry, marking it running. SKIP
// LOCKED lets concurrent workers claim disjoint entries without blocking.
func (r *JobQueueRepository) ClaimNext(ctx context.Context, tx db.DBTX, now time.Time) (*ClaimedJob, error) {
	const query = `
		UPDATE job_queue SET
			status = 'running',
			attempts = attempts + 1,
			updated_at = now()
		WHERE id = (
			SELECT id FROM job_queue
			WHERE status = 'queued' AND run_at <= $1
			ORDER BY run_at, id
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING id, kind, payload, attempts`

	claimed := &ClaimedJob{}
	err := tx.QueryRow(ctx, query, now).Scan(&claimed.ID, &claimed.Kind, &claimed.Payload, &claimed.Attempts)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to claim job", err)
	}
	return claimed, nil
}

func (r *JobQueueRepository) MarkCompleted(ctx context.Context, tx db.DBTX, entryID uuid.UUID) error {
	const query = `
		UPDATE job_queue SET status = 'succeeded', last_error = NULL, updated_at = now()
		WHERE id = $1`

	if _, err := tx.Exec(ctx, query, entryID); err != nil {
		return infra.WrapRepoErr("failed to mark job completed", err)
	}
	return nil
}

// MarkFailed re-queues the entry for redelivery until the attempt budget is
// spent; after that, or when terminal, the entry fails permanently. Re-queued
// entries are deferred to retryAt so a flapping job does not spin the worker.
func (r *JobQueueRepository) MarkFailed(ctx context.Context, tx db.DBTX, entryID uuid.UUID, lastError string, terminal bool, retryAt time.Time) error {
	const query = `
		UPDATE job_queue SET
			status = CASE WHEN $3 OR attempts >= $4 THEN 'failed' ELSE 'queued' END,
			run_at = CASE WHEN $3 OR attempts >= $4 THEN run_at ELSE $5 END,
			last_error = $2,
			updated_at = now()
		WHERE id = $1`

	errText := pgtype.Text{String: lastError, Valid: lastError != ""}
	if _, err := tx.Exec(ctx, query, entryID, errText, terminal, r.maxAttempts, retryAt); err != nil {
		return infra.WrapRepoErr("failed to mark job failed", err)
	}
	return nil
}

// RetryDelay grows linearly with the attempt count and is capped so a stuck
// entry never drifts more than two minutes between redeliveries.
func RetryDelay(attempts int32) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	delay := time.Duration(attempts) * 5 * time.Second
	if delay > 2*time.Minute {
		delay = 2 * time.Minute
	}
	return delay
}

package readstore

import (
	"context"

	"journal-backend/internal/infra"
	"journal-backend/internal/infra/db"
	"journal-backend/internal/pkg/pgconv"
	"journal-backend/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const queueEntryColumns = `id, kind, payload, run_at, attempts, status, last_error, created_at, updated_at`

type JobQueueReadStore struct {
	db db.DBTX
}

func NewJobQueueReadStore(dbtx db.DBTX) *JobQueueReadStore {
	return &JobQueueReadStore{db: dbtx}
}

func (r *JobQueueReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.QueueEntryView, error) {
	const query = `SELECT ` + queueEntryColumns + ` FROM job_queue WHERE id = $1`

	view, err := scanQueueEntry(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("queue entry not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get queue entry", err)
	}
	return view, nil
}

func (r *JobQueueReadStore) FindRecent(ctx context.Context, limit int32, status, kind *string) ([]*queries.QueueEntryView, error) {
	const query = `
		SELECT ` + queueEntryColumns + `
		FROM job_queue
		WHERE ($2::text IS NULL OR status = $2)
		  AND ($3::text IS NULL OR kind = $3)
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit, status, kind)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list queue entries", err)
	}
	defer rows.Close()

	var views []*queries.QueueEntryView
	for rows.Next() {
		view, err := scanQueueEntry(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan queue entry", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate queue entries", err)
	}
	return views, nil
}

func scanQueueEntry(row pgx.Row) (*queries.QueueEntryView, error) {
	var (
		view      queries.QueueEntryView
		lastError pgtype.Text
	)
	err := row.Scan(
		&view.ID, &view.Kind, &view.Payload, &view.RunAt,
		&view.Attempts, &view.Status, &lastError,
		&view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	view.LastError = pgconv.StringPtrFromPgtype(lastError)
	return &view, nil
}

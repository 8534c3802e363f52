package queries

import (
	"context"

	"github.com/google/uuid"

	"journal-backend/internal/infra"
	"journal-backend/internal/pkg/errs"
)

var ErrQueueEntryNotFound = errs.New("queue entry not found")

type JobQueueFilters struct {
	Status *string
	Kind   *string
}

type JobQueueReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*QueueEntryView, error)
	FindRecent(ctx context.Context, limit int32, status, kind *string) ([]*QueueEntryView, error)
}

type JobQueueQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*QueueEntryView, error)
	ListRecent(ctx context.Context, filters JobQueueFilters, limit int) ([]*QueueEntryView, error)
}

type jobQueueQueriesImpl struct {
	readStore JobQueueReadStore
}

func NewJobQueueQueries(readStore JobQueueReadStore) JobQueueQueries {
	return &jobQueueQueriesImpl{readStore: readStore}
}

func (q *jobQueueQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*QueueEntryView, error) {
	entry, err := q.readStore.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrQueueEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (q *jobQueueQueriesImpl) ListRecent(ctx context.Context, filters JobQueueFilters, limit int) ([]*QueueEntryView, error) {
	limit = ValidateLimit(limit)
	return q.readStore.FindRecent(ctx, int32(limit), filters.Status, filters.Kind)
}

package commands

import (
	"context"

	"journal-backend/internal/domain/job"
	"journal-backend/internal/pkg/clock"
	"journal-backend/internal/usecase/shared"

	"github.com/google/uuid"
)

type StartJobResult struct {
	QueueEntryID uuid.UUID
	Kind         job.Kind
	BatchSize    int
}

type JobCommands interface {
	// StartChain enqueues the first envelope of a job chain. Subsequent
	// pages enqueue themselves from the worker.
	StartChain(ctx context.Context, kind string, batchSize int) (*StartJobResult, error)
}

type jobCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewJobCommands(uow shared.UnitOfWork, clk clock.Clock) JobCommands {
	return &jobCommandsImpl{uow: uow, clock: clk}
}

const defaultBatchSize = 100

func (uc *jobCommandsImpl) StartChain(ctx context.Context, kind string, batchSize int) (*StartJobResult, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	envelope, err := job.NewEnvelope(job.Kind(kind), job.FirstCursor(batchSize))
	if err != nil {
		return nil, err
	}

	payload, err := envelope.Encode()
	if err != nil {
		return nil, err
	}

	var entryID uuid.UUID
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		id, derr := tx.JobQueue().Enqueue(ctx, tx.DB(), string(envelope.Kind), payload, uc.clock.Now())
		if derr != nil {
			return derr
		}
		entryID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &StartJobResult{
		QueueEntryID: entryID,
		Kind:         envelope.Kind,
		BatchSize:    envelope.Cursor.BatchSize,
	}, nil
}

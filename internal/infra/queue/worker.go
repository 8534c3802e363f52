package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"journal-backend/internal/domain/job"
	"journal-backend/internal/infra/db"
	"journal-backend/internal/infra/repository"
	"journal-backend/internal/pkg/clock"
	"journal-backend/internal/pkg/config"
	"journal-backend/internal/usecase/jobs"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Worker polls the job queue and dispatches decoded envelopes to the runner
// registered for their kind. When a page result carries a next cursor the
// worker enqueues the continuation, so page N+1 is delivered as its own
// message, fully decoupled from page N.
type Worker struct {
	pool       *pgxpool.Pool
	repo       *repository.JobQueueRepository
	registry   *jobs.Registry
	reporter   jobs.Reporter
	clock      clock.Clock
	pollPeriod time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func NewWorker(pool *pgxpool.Pool, registry *jobs.Registry, reporter jobs.Reporter, clk clock.Clock, cfg config.JobsConfig) *Worker {
	return &Worker{
		pool:       pool,
		repo:       repository.NewJobQueueRepository(int32(cfg.MaxAttempts)),
		registry:   registry,
		reporter:   reporter,
		clock:      clk,
		pollPeriod: cfg.WorkerPollPeriod,
	}
}

// Start launches the poll loop. It returns immediately; Stop blocks until
// the loop drains.
func (w *Worker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)
		w.run(ctx)
	}()
}

func (w *Worker) Stop(ctx context.Context) error {
	w.once.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
	})
	if w.done == nil {
		return nil
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) run(ctx context.Context) {
	ticker := time.NewTicker(w.pollPeriod)
	defer ticker.Stop()

	for {
		// Drain everything due before going back to sleep.
		for w.processOne(ctx) {
			if ctx.Err() != nil {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// processOne claims and executes a single queue entry. Returns true when an
// entry was processed, false when the queue was empty or claiming failed.
func (w *Worker) processOne(ctx context.Context) bool {
	claimed, err := db.RunInTx(ctx, w.pool, func(tx db.DBTX) (*repository.ClaimedJob, error) {
		return w.repo.ClaimNext(ctx, tx, w.clock.Now())
	})
	if err != nil {
		slog.Error("failed to claim queue entry", "error", err.Error())
		return false
	}
	if claimed == nil {
		return false
	}

	w.execute(ctx, claimed)
	return true
}

func (w *Worker) execute(ctx context.Context, claimed *repository.ClaimedJob) {
	envelope, err := job.DecodeEnvelope(claimed.Payload)
	if err != nil {
		// A payload that does not decode will never decode; fail it for good.
		slog.Error("rejecting malformed queue entry", "entry_id", claimed.ID, "error", err.Error())
		w.finishFailed(ctx, claimed, err, true)
		return
	}

	runner, ok := w.registry.Lookup(envelope.Kind)
	if !ok {
		slog.Error("no runner registered for kind", "entry_id", claimed.ID, "kind", envelope.Kind)
		w.finishFailed(ctx, claimed, job.ErrUnknownKind, true)
		return
	}

	result, err := runner.Run(ctx, envelope)
	if err != nil {
		slog.Error("job page failed",
			"kind", envelope.Kind,
			"batch_number", envelope.Cursor.BatchNumber,
			"attempt", claimed.Attempts,
			"error", err.Error())
		w.finishFailed(ctx, claimed, err, false)
		w.reporter.ReportFailed(ctx, envelope.Kind, envelope.Cursor.BatchNumber, err)
		return
	}

	// Completion and the continuation enqueue commit atomically: either the
	// chain advances and this entry is done, or neither happened and
	// redelivery picks it back up.
	_, err = db.RunInTx(ctx, w.pool, func(tx db.DBTX) (struct{}, error) {
		if err := w.repo.MarkCompleted(ctx, tx, claimed.ID); err != nil {
			return struct{}{}, err
		}
		if result.HasNext() {
			next := job.Envelope{Kind: envelope.Kind, Cursor: *result.NextCursor}
			payload, err := next.Encode()
			if err != nil {
				return struct{}{}, err
			}
			if _, err := w.repo.Enqueue(ctx, tx, string(next.Kind), payload, w.clock.Now()); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})
	if err != nil {
		slog.Error("failed to finish queue entry", "entry_id", claimed.ID, "error", err.Error())
		return
	}

	slog.Info("job page completed",
		"kind", result.Kind,
		"batch_number", result.BatchNumber,
		"succeeded", result.Succeeded,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"has_next", result.HasNext())
	w.reporter.ReportCompleted(ctx, result)
}

func (w *Worker) finishFailed(ctx context.Context, claimed *repository.ClaimedJob, cause error, terminal bool) {
	retryAt := w.clock.Now().Add(repository.RetryDelay(claimed.Attempts))
	_, err := db.RunInTx(ctx, w.pool, func(tx db.DBTX) (struct{}, error) {
		return struct{}{}, w.repo.MarkFailed(ctx, tx, claimed.ID, cause.Error(), terminal, retryAt)
	})
	if err != nil {
		slog.Error("failed to mark queue entry failed", "entry_id", claimed.ID, "error", err.Error())
	}
}

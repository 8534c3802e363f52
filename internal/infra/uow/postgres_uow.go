package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"journal-backend/internal/infra/db"
	"journal-backend/internal/infra/readstore"
	"journal-backend/internal/infra/repository"
	"journal-backend/internal/pkg/config"
	"journal-backend/internal/pkg/errs"
	"journal-backend/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool        *pgxpool.Pool
	maxAttempts int32
}

func NewPostgresUoW(pool *pgxpool.Pool, jobsCfg config.JobsConfig) shared.UnitOfWork {
	return &PostgresUoW{
		pool:        pool,
		maxAttempts: int32(jobsCfg.MaxAttempts),
	}
}

// ReadCommitted prevents dirty reads while allowing concurrent writes
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

// Read-only transaction for consistent multi-table snapshots
func (u *PostgresUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return u.runReadOnlyTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}, fn)
}

func (u *PostgresUoW) WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	return fn(ctx, u.pool)
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return &commandReads{dbtx: u.pool}
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	const maxRetries = 3
	base := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, errTransactionBegin)
		}

		tx := &pgTx{
			dbtx: pgxTx,
			uow:  u,
		}

		err = fn(ctx, tx)
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shouldRetry(err, attempt, maxRetries) {
			if attempt == maxRetries {
				slog.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, base)

		slog.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func (u *PostgresUoW) runReadOnlyTx(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, dbtx db.DBTX) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, options)
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}

	defer func() {
		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("failed to rollback read-only transaction", "error", rollbackErr.Error())
			}
		}
	}()

	if err := fn(ctx, pgxTx); err != nil {
		return err
	}

	return pgxTx.Commit(ctx)
}

func shouldRetry(err error, attempt, maxRetries int) bool {
	return isRetryableError(err) && attempt < maxRetries
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Fallback to a simple calculation if crypto/rand fails
		return 0
	}
	// Safe conversion: mask high bit to ensure positive int64
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- Intentionally safe conversion after masking
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx db.DBTX
	uow  *PostgresUoW

	// Lazy-initialized repositories
	memberRepo     shared.MemberRepository
	promptRepo     shared.PromptRepository
	sentPromptRepo shared.SentPromptRepository
	jobQueueRepo   shared.JobQueueRepository
	operatorRepo   shared.OperatorRepository
	statsRepo      shared.MemberStatsRepository
	commandReads   shared.CommandReads
}

func (t *pgTx) DB() db.DBTX {
	return t.dbtx
}

func (t *pgTx) Members() shared.MemberRepository {
	if t.memberRepo == nil {
		t.memberRepo = repository.NewMemberRepository()
	}
	return t.memberRepo
}

func (t *pgTx) Prompts() shared.PromptRepository {
	if t.promptRepo == nil {
		t.promptRepo = repository.NewPromptRepository()
	}
	return t.promptRepo
}

func (t *pgTx) SentPrompts() shared.SentPromptRepository {
	if t.sentPromptRepo == nil {
		t.sentPromptRepo = repository.NewSentPromptRepository()
	}
	return t.sentPromptRepo
}

func (t *pgTx) JobQueue() shared.JobQueueRepository {
	if t.jobQueueRepo == nil {
		t.jobQueueRepo = repository.NewJobQueueRepository(t.uow.maxAttempts)
	}
	return t.jobQueueRepo
}

func (t *pgTx) Operators() shared.OperatorRepository {
	if t.operatorRepo == nil {
		t.operatorRepo = repository.NewOperatorRepository()
	}
	return t.operatorRepo
}

func (t *pgTx) MemberStats() shared.MemberStatsRepository {
	if t.statsRepo == nil {
		t.statsRepo = repository.NewMemberStatsRepository()
	}
	return t.statsRepo
}

func (t *pgTx) Reads() shared.CommandReads {
	if t.commandReads == nil {
		t.commandReads = &commandReads{dbtx: t.dbtx}
	}
	return t.commandReads
}

type commandReads struct {
	dbtx db.DBTX

	// Lazy-initialized readstores
	memberStore *readstore.MemberReadStore
	promptStore *readstore.PromptReadStore
}

func (r *commandReads) MemberByID(ctx context.Context, id uuid.UUID) (*shared.MemberSnapshot, error) {
	if r.memberStore == nil {
		r.memberStore = readstore.NewMemberReadStore(r.dbtx)
	}

	view, err := r.memberStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toMemberSnapshot(view.ID, view.Email, view.Tier, view.TrialEndsAt, view.AccessEndsAt), nil
}

func (r *commandReads) MemberByEmail(ctx context.Context, email string) (*shared.MemberSnapshot, error) {
	if r.memberStore == nil {
		r.memberStore = readstore.NewMemberReadStore(r.dbtx)
	}

	view, err := r.memberStore.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return toMemberSnapshot(view.ID, view.Email, view.Tier, view.TrialEndsAt, view.AccessEndsAt), nil
}

func (r *commandReads) PromptForDate(ctx context.Context, date time.Time) (*shared.PromptSnapshot, error) {
	if r.promptStore == nil {
		r.promptStore = readstore.NewPromptReadStore(r.dbtx)
	}
	return r.promptStore.FindForDate(ctx, date)
}

func toMemberSnapshot(id uuid.UUID, email, tier string, trialEndsAt, accessEndsAt *time.Time) *shared.MemberSnapshot {
	return &shared.MemberSnapshot{
		ID:           id,
		Email:        email,
		Tier:         tier,
		TrialEndsAt:  trialEndsAt,
		AccessEndsAt: accessEndsAt,
	}
}

package jobs

import (
	"context"

	"journal-backend/internal/domain/job"
	"journal-backend/internal/pkg/clock"
	"journal-backend/internal/usecase/shared"
)

// StatsComputer produces a full aggregate over the members table.
type StatsComputer interface {
	ComputeSnapshot(ctx context.Context) (*shared.StatsSnapshot, error)
}

// MemberStatsRunner recomputes the aggregate member counts in a single
// pass. The whole aggregate is one GROUP BY, so there is nothing to page;
// the envelope's cursor is ignored and the chain never continues.
type MemberStatsRunner struct {
	computer StatsComputer
	uow      shared.UnitOfWork
	clock    clock.Clock
}

func NewMemberStatsRunner(computer StatsComputer, uow shared.UnitOfWork, clk clock.Clock) *MemberStatsRunner {
	return &MemberStatsRunner{computer: computer, uow: uow, clock: clk}
}

func (r *MemberStatsRunner) Kind() job.Kind {
	return job.KindMemberStats
}

func (r *MemberStatsRunner) Run(ctx context.Context, envelope job.Envelope) (job.PageResult, error) {
	run := job.NewRun()
	if err := run.Transition(job.StatePageInFlight); err != nil {
		return job.PageResult{}, err
	}

	snap, err := r.computer.ComputeSnapshot(ctx)
	if err != nil {
		_ = run.Transition(job.StateFailed)
		return job.PageResult{}, err
	}
	snap.ComputedAt = r.clock.Now()

	err = r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.MemberStats().InsertSnapshot(ctx, tx.DB(), snap)
	})
	if err != nil {
		_ = run.Transition(job.StateFailed)
		return job.PageResult{}, err
	}

	_ = run.Transition(job.StateCompleted)
	return job.PageResult{
		Kind:        r.Kind(),
		BatchNumber: envelope.Cursor.BatchNumber,
		Succeeded:   1,
	}, nil
}

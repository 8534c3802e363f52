package jobs

import (
	"context"

	"journal-backend/internal/domain/job"
	"journal-backend/internal/domain/member"
	"journal-backend/internal/pkg/clock"
	"journal-backend/internal/usecase/shared"
)

// CancelSweepRunner downgrades cancelled members whose access window has
// lapsed. Shares the downgrade path with the trial sweep; only the scan and
// the eligibility predicate differ.
type CancelSweepRunner struct {
	engine *Engine[MemberScanRow]
	scans  MemberScanStore
	uow    shared.UnitOfWork
	clock  clock.Clock
}

func NewCancelSweepRunner(scans MemberScanStore, uow shared.UnitOfWork, clk clock.Clock) *CancelSweepRunner {
	r := &CancelSweepRunner{scans: scans, uow: uow, clock: clk}
	r.engine = NewEngine[MemberScanRow](r)
	return r
}

func (r *CancelSweepRunner) Kind() job.Kind {
	return job.KindCancelSweep
}

func (r *CancelSweepRunner) Run(ctx context.Context, envelope job.Envelope) (job.PageResult, error) {
	return r.engine.RunPage(ctx, r.Kind(), envelope.Cursor)
}

func (r *CancelSweepRunner) FetchPage(ctx context.Context, cursor job.Cursor) ([]MemberScanRow, error) {
	return r.scans.AccessExpirablePage(ctx, cursor, r.clock.Now())
}

func (r *CancelSweepRunner) ItemKey(row MemberScanRow) job.PageKey {
	return scanKey(row)
}

func (r *CancelSweepRunner) HandleItem(ctx context.Context, row MemberScanRow) (Outcome, error) {
	return downgradeIfEligible(ctx, r.uow, r.clock, row, (*member.Member).AccessExpirable)
}

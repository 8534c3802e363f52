package jobs

import (
	"context"
	"time"

	"journal-backend/internal/domain/job"
	"journal-backend/internal/domain/member"
	"journal-backend/internal/infra"
	"journal-backend/internal/pkg/clock"
	"journal-backend/internal/usecase/shared"
)

// TrialExpireRunner downgrades members whose trial window closed without
// activation. Eligibility is re-checked under the row lock, so redelivered
// pages skip members a previous pass already downgraded.
type TrialExpireRunner struct {
	engine *Engine[MemberScanRow]
	scans  MemberScanStore
	uow    shared.UnitOfWork
	clock  clock.Clock
}

func NewTrialExpireRunner(scans MemberScanStore, uow shared.UnitOfWork, clk clock.Clock) *TrialExpireRunner {
	r := &TrialExpireRunner{scans: scans, uow: uow, clock: clk}
	r.engine = NewEngine[MemberScanRow](r)
	return r
}

func (r *TrialExpireRunner) Kind() job.Kind {
	return job.KindTrialExpire
}

func (r *TrialExpireRunner) Run(ctx context.Context, envelope job.Envelope) (job.PageResult, error) {
	return r.engine.RunPage(ctx, r.Kind(), envelope.Cursor)
}

func (r *TrialExpireRunner) FetchPage(ctx context.Context, cursor job.Cursor) ([]MemberScanRow, error) {
	return r.scans.TrialExpirablePage(ctx, cursor, r.clock.Now())
}

func (r *TrialExpireRunner) ItemKey(row MemberScanRow) job.PageKey {
	return scanKey(row)
}

func (r *TrialExpireRunner) HandleItem(ctx context.Context, row MemberScanRow) (Outcome, error) {
	return downgradeIfEligible(ctx, r.uow, r.clock, row, (*member.Member).TrialExpirable)
}

// downgradeIfEligible re-loads the member inside a transaction and applies
// the downgrade only when the predicate still holds.
func downgradeIfEligible(ctx context.Context, uow shared.UnitOfWork, clk clock.Clock, row MemberScanRow, eligible func(*member.Member, time.Time) bool) (Outcome, error) {
	outcome := OutcomeSkipped
	err := uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		m, err := tx.Members().FindByIDForUpdate(ctx, tx.DB(), row.MemberID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				// Disappeared between fetch and handle; nothing to do.
				return nil
			}
			return err
		}
		now := clk.Now()
		if !eligible(m, now) {
			return nil
		}
		m.Downgrade(now)
		if err := tx.Members().Update(ctx, tx.DB(), m); err != nil {
			return err
		}
		outcome = OutcomeProcessed
		return nil
	})
	if err != nil {
		return OutcomeSkipped, err
	}
	return outcome, nil
}

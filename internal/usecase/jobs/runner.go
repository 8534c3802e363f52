package jobs

import (
	"context"
	"fmt"
	"time"

	"journal-backend/internal/domain/job"

	"github.com/google/uuid"
)

// Runner executes one page of a specific job kind. The worker dispatches a
// decoded envelope to the runner registered for its kind and enqueues the
// continuation when the result carries a next cursor.
type Runner interface {
	Kind() job.Kind
	Run(ctx context.Context, envelope job.Envelope) (job.PageResult, error)
}

// Registry maps job kinds to their runners.
type Registry struct {
	runners map[job.Kind]Runner
}

func NewRegistry(runners ...Runner) (*Registry, error) {
	reg := &Registry{runners: make(map[job.Kind]Runner, len(runners))}
	for _, r := range runners {
		if _, dup := reg.runners[r.Kind()]; dup {
			return nil, fmt.Errorf("duplicate runner for kind %q", r.Kind())
		}
		reg.runners[r.Kind()] = r
	}
	return reg, nil
}

func (r *Registry) Lookup(kind job.Kind) (Runner, bool) {
	runner, ok := r.runners[kind]
	return runner, ok
}

// MemberScanRow is one row of a paged member scan: just enough to build the
// page key and re-load the aggregate inside the handling transaction.
type MemberScanRow struct {
	MemberID uuid.UUID
	SortKey  time.Time
}

// MemberScanStore feeds the sweep runners. Every method returns rows
// strictly after the cursor's last key, ordered by (sort column, member id)
// ascending, at most BatchSize of them, soft-deleted members excluded.
type MemberScanStore interface {
	TrialExpirablePage(ctx context.Context, cursor job.Cursor, now time.Time) ([]MemberScanRow, error)
	AccessExpirablePage(ctx context.Context, cursor job.Cursor, now time.Time) ([]MemberScanRow, error)
	PushTargetPage(ctx context.Context, cursor job.Cursor) ([]MemberScanRow, error)
}

func scanKey(row MemberScanRow) job.PageKey {
	return job.PageKey{EndsAt: row.SortKey, MemberID: row.MemberID}
}

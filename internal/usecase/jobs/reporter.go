package jobs

import (
	"context"

	"journal-backend/internal/domain/job"
)

// Reporter announces job outcomes to the operations channel. Implementations
// must be best-effort: reporting failures never fail the job itself.
type Reporter interface {
	ReportCompleted(ctx context.Context, result job.PageResult)
	ReportFailed(ctx context.Context, kind job.Kind, batchNumber int, err error)
}

// NopReporter is used when no reporting sink is configured.
type NopReporter struct{}

func (NopReporter) ReportCompleted(context.Context, job.PageResult)    {}
func (NopReporter) ReportFailed(context.Context, job.Kind, int, error) {}

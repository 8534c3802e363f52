package scheduler

import (
	"context"
	"log/slog"

	"journal-backend/internal/domain/job"
	"journal-backend/internal/pkg/config"
	"journal-backend/internal/usecase/commands"

	"github.com/robfig/cron/v3"
)

// Scheduler kicks off the daily job chains. It only ever enqueues the first
// envelope; the worker drives the rest of each chain.
type Scheduler struct {
	cron     *cron.Cron
	jobs     commands.JobCommands
	cfg      config.JobsConfig
	disabled bool
}

func New(jobCommands commands.JobCommands, cfg config.JobsConfig) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		jobs:     jobCommands,
		cfg:      cfg,
		disabled: cfg.SchedulerDisabled,
	}

	specs := map[job.Kind]string{
		job.KindTrialExpire: cfg.TrialExpireSpec,
		job.KindCancelSweep: cfg.CancelSweepSpec,
		job.KindDailyPrompt: cfg.DailyPromptSpec,
		job.KindMemberStats: cfg.MemberStatsSpec,
	}
	for kind, spec := range specs {
		kind := kind
		if _, err := s.cron.AddFunc(spec, func() { s.kickoff(kind) }); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	if s.disabled {
		slog.Info("job scheduler disabled")
		return
	}
	s.cron.Start()
	slog.Info("job scheduler started",
		"trial_expire", s.cfg.TrialExpireSpec,
		"cancel_sweep", s.cfg.CancelSweepSpec,
		"daily_prompt", s.cfg.DailyPromptSpec,
		"member_stats", s.cfg.MemberStatsSpec)
}

func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) kickoff(kind job.Kind) {
	result, err := s.jobs.StartChain(context.Background(), string(kind), s.cfg.DefaultBatchSize)
	if err != nil {
		slog.Error("failed to start scheduled job chain", "kind", kind, "error", err.Error())
		return
	}
	slog.Info("scheduled job chain started", "kind", kind, "entry_id", result.QueueEntryID)
}

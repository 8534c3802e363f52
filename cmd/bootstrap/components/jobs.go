package components

import (
	"context"
	"log/slog"

	"journal-backend/internal/infra/messaging"
	"journal-backend/internal/infra/queue"
	"journal-backend/internal/infra/scheduler"
	"journal-backend/internal/infra/slack"
	"journal-backend/internal/pkg/config"
	"journal-backend/internal/usecase/jobs"

	"go.uber.org/fx"
)

var JobsModule = fx.Module("jobs",
	fx.Provide(
		fx.Annotate(
			slack.NewNotifier,
			fx.As(new(jobs.Reporter)),
		),
		NewPusher,
		queue.NewWorker,
		scheduler.New,
	),
	fx.Invoke(
		registerWorker,
		registerScheduler,
	),
)

// NewPusher returns the FCM client when credentials are configured, a no-op
// pusher otherwise.
func NewPusher(cfg config.MessagingConfig) (jobs.Pusher, error) {
	if cfg.FirebaseCredentialsFile == "" {
		slog.Info("FCM not configured, prompt pushes disabled")
		return messaging.NopPusher{}, nil
	}
	return messaging.NewFCMPusher(context.Background(), cfg)
}

func registerWorker(lc fx.Lifecycle, worker *queue.Worker) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			worker.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return worker.Stop(ctx)
		},
	})
}

func registerScheduler(lc fx.Lifecycle, sched *scheduler.Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			sched.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return sched.Stop(ctx)
		},
	})
}

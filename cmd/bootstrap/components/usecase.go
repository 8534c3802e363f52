package components

import (
	"journal-backend/internal/pkg/clock"
	"journal-backend/internal/usecase"
	"journal-backend/internal/usecase/commands"
	"journal-backend/internal/usecase/jobs"
	"journal-backend/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
	usecaseJobsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewAuthCommands,
		commands.NewMemberCommands,
		commands.NewPromptCommands,
		commands.NewJobCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewMemberQueries,
		queries.NewOperatorQueries,
		queries.NewStatsQueries,
		queries.NewJobQueueQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)

var usecaseJobsModule = fx.Module("usecase/jobs",
	fx.Provide(
		jobs.NewTrialExpireRunner,
		jobs.NewCancelSweepRunner,
		jobs.NewDailyPromptRunner,
		jobs.NewMemberStatsRunner,
		NewJobRegistry,
	),
)

func NewJobRegistry(
	trial *jobs.TrialExpireRunner,
	cancel *jobs.CancelSweepRunner,
	daily *jobs.DailyPromptRunner,
	stats *jobs.MemberStatsRunner,
) (*jobs.Registry, error) {
	return jobs.NewRegistry(trial, cancel, daily, stats)
}

package components

import (
	"journal-backend/internal/infra/db"
	"journal-backend/internal/infra/readstore"
	"journal-backend/internal/infra/uow"
	"journal-backend/internal/pkg/config"
	"journal-backend/internal/usecase/jobs"
	"journal-backend/internal/usecase/queries"
	"journal-backend/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	fx.Provide(
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(shared.UnitOfWork)),
		),
	),
)

var baseOption = fx.Provide(
	NewDBTX,
	func(cfg config.Config) config.JobsConfig { return cfg.Jobs },
	func(cfg config.Config) config.SlackConfig { return cfg.Slack },
	func(cfg config.Config) config.MessagingConfig { return cfg.Messaging },
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		fx.Annotate(
			readstore.NewMemberReadStore,
			fx.As(new(queries.MemberReadStore)),
		),
		fx.Annotate(
			readstore.NewOperatorReadStore,
			fx.As(new(queries.OperatorReadStore)),
		),
		fx.Annotate(
			readstore.NewJobQueueReadStore,
			fx.As(new(queries.JobQueueReadStore)),
		),
		fx.Annotate(
			readstore.NewStatsReadStore,
			fx.As(new(queries.StatsReadStore)),
			fx.As(new(jobs.StatsComputer)),
		),
		fx.Annotate(
			readstore.NewMemberScanStore,
			fx.As(new(jobs.MemberScanStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

package components

import (
	"journal-backend/internal/handler"
	"journal-backend/internal/handler/api"
	"journal-backend/internal/handler/hooks"
	"journal-backend/internal/handler/middleware"
	"journal-backend/internal/pkg/clock"
	"journal-backend/internal/pkg/config"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewMemberHandler,
		api.NewJobHandler,
		hooks.NewSlackHandler,
		hooks.NewCMSHandler,
		hooks.NewRevenueHandler,
		middleware.NewAuthMiddleware,
		NewSignatureMiddleware,
		NewHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

func NewSignatureMiddleware(cfg config.Config, clk clock.Clock) *middleware.SignatureMiddleware {
	return middleware.NewSignatureMiddleware(clk, cfg.Webhook.ReplayTolerance)
}

func NewHandlers(
	auth *api.AuthHandler,
	member *api.MemberHandler,
	job *api.JobHandler,
	slackHandler *hooks.SlackHandler,
	cms *hooks.CMSHandler,
	revenue *hooks.RevenueHandler,
) handler.Handlers {
	return handler.Handlers{
		Auth:    auth,
		Member:  member,
		Job:     job,
		Slack:   slackHandler,
		CMS:     cms,
		Revenue: revenue,
	}
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"journal-backend/internal/domain/operator"
	"journal-backend/internal/handler/api"
	"journal-backend/internal/handler/hooks"
	"journal-backend/internal/handler/middleware"
	"journal-backend/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Auth    *api.AuthHandler
	Member  *api.MemberHandler
	Job     *api.JobHandler
	Slack   *hooks.SlackHandler
	CMS     *hooks.CMSHandler
	Revenue *hooks.RevenueHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware, sigMiddleware *middleware.SignatureMiddleware) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, cfg, h, authMiddleware, sigMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware, sigMiddleware *middleware.SignatureMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/login", Handler: h.Auth.Login},
				{Method: http.MethodPost, Path: "/refresh", Handler: h.Auth.Refresh},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "/logout", Handler: h.Auth.Logout},
				{Method: http.MethodGet, Path: "/me", Handler: h.Auth.Me},
			})
		}

		members := apiGroup.Group("/members")
		members.Use(authMiddleware.RequireAuth())
		{
			adminOnly := authMiddleware.RequireRoleAtLeast(operator.RoleAdmin)
			operatorOnly := authMiddleware.RequireRoleAtLeast(operator.RoleOperator)
			addRoutes(members, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Member.Register, Mw: []gin.HandlerFunc{operatorOnly}},
				{Method: http.MethodGet, Path: "", Handler: h.Member.List},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Member.Get},
				{Method: http.MethodPatch, Path: "/:id", Handler: h.Member.Update, Mw: []gin.HandlerFunc{operatorOnly}},
				{Method: http.MethodDelete, Path: "/:id", Handler: h.Member.Delete, Mw: []gin.HandlerFunc{adminOnly}},
				{Method: http.MethodPost, Path: "/:id/activate-trial", Handler: h.Member.ActivateTrial, Mw: []gin.HandlerFunc{operatorOnly}},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Member.Cancel, Mw: []gin.HandlerFunc{operatorOnly}},
			})
		}

		jobs := apiGroup.Group("/jobs")
		jobs.Use(authMiddleware.RequireAuth())
		jobs.Use(authMiddleware.RequireRoleAtLeast(operator.RoleAdmin))
		{
			addRoutes(jobs, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Job.Start},
				{Method: http.MethodGet, Path: "", Handler: h.Job.List},
				{Method: http.MethodGet, Path: "/stats", Handler: h.Job.Stats},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Job.Get},
			})
		}
	}

	hookGroup := engine.Group("/hooks")
	{
		addRoutes(hookGroup, []route{
			{Method: http.MethodPost, Path: "/slack", Handler: h.Slack.Command,
				Mw: []gin.HandlerFunc{sigMiddleware.VerifySlack(cfg.Webhook.SlackSigningSecret)}},
			{Method: http.MethodPost, Path: "/cms", Handler: h.CMS.Event,
				Mw: []gin.HandlerFunc{sigMiddleware.VerifyCMS(cfg.Webhook.CMSSigningSecret)}},
			{Method: http.MethodPost, Path: "/revenue", Handler: h.Revenue.Event,
				Mw: []gin.HandlerFunc{middleware.RequireSharedKey(cfg.Webhook.RevenueSharedKey)}},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}

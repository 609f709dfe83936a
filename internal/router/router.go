package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/registrar-api/internal/handler"
	"github.com/noah-isme/registrar-api/internal/middleware"
	"github.com/noah-isme/registrar-api/internal/models"
	"github.com/noah-isme/registrar-api/internal/service"
	"github.com/noah-isme/registrar-api/pkg/config"
	"github.com/noah-isme/registrar-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/registrar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/registrar-api/pkg/middleware/requestid"
)

// Handlers bundles every HTTP handler mounted by Setup.
type Handlers struct {
	Requests      *handler.RequestHandler
	ClaimSlips    *handler.ClaimSlipHandler
	StatusLogs    *handler.StatusLogHandler
	Documents     *handler.DocumentHandler
	Notifications *handler.NotificationHandler
	Metrics       *handler.MetricsHandler
}

// Setup builds the gin engine with global middleware and all API routes.
func Setup(cfg *config.Config, h Handlers, tokens middleware.TokenValidator, metrics *service.MetricsService, logr *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registrarOnly := middleware.RequireRoles(models.RoleRegistrar)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokens))
	{
		requests := api.Group("/requests")
		{
			requests.POST("", h.Requests.Create)
			requests.GET("", h.Requests.List)
			requests.GET("/export", registrarOnly, h.Requests.Export)
			requests.GET("/:id", h.Requests.Get)
			requests.PUT("/:id", h.Requests.Update)
			requests.DELETE("/:id", h.Requests.Delete)
			requests.PUT("/:id/status", registrarOnly, h.Requests.ChangeStatus)
		}

		claimSlips := api.Group("/claim-slips")
		{
			claimSlips.GET("", h.ClaimSlips.Get)
			claimSlips.GET("/:requestId/pdf", h.ClaimSlips.PDF)
		}

		logs := api.Group("/request-status-logs")
		{
			logs.GET("", h.StatusLogs.List)
			logs.PUT("/:id", registrarOnly, h.StatusLogs.Correct)
		}

		api.GET("/documents", h.Documents.List)

		notifications := api.Group("/notifications")
		{
			notifications.GET("", h.Notifications.List)
			notifications.DELETE("", h.Notifications.DeleteAll)
			notifications.GET("/unread-count", h.Notifications.UnreadCount)
			notifications.PUT("/:id/read", h.Notifications.MarkRead)
			notifications.DELETE("/:id", h.Notifications.Delete)
		}
	}

	return r
}

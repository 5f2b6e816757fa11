package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/journey-backend/internal/http/handlers"
	httpMW "github.com/yungbote/journey-backend/internal/http/middleware"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware

	JourneyHandler  *httpH.JourneyHandler
	RunHandler      *httpH.RunHandler
	FlowHandler     *httpH.FlowHandler
	AIHelpHandler   *httpH.AIHelpHandler
	RealtimeHandler *httpH.RealtimeHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("journey-backend"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.AuthMiddleware != nil {
			api.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Journey catalog
		if cfg.JourneyHandler != nil {
			api.GET("/journeys", cfg.JourneyHandler.ListJourneys)
			api.GET("/journeys/:id", cfg.JourneyHandler.GetJourney)
			api.GET("/journeys/:id/next-module", cfg.JourneyHandler.GetNextModule)
		}

		// Run lifecycle
		if cfg.RunHandler != nil {
			api.GET("/journeys/:id/run", cfg.RunHandler.EnterRun)
			api.POST("/journeys/:id/run/restart", cfg.RunHandler.RestartRun)
			api.GET("/journeys/:id/run/summary", cfg.RunHandler.RunSummary)
		}

		// Block completion
		if cfg.FlowHandler != nil {
			api.POST("/journeys/:id/run/blocks/:blockId/complete", cfg.FlowHandler.CompleteBlock)
		}

		// AI help proxies
		if cfg.AIHelpHandler != nil {
			api.POST("/ai/remediation", cfg.AIHelpHandler.Remediation)
			api.POST("/ai/explain-term", cfg.AIHelpHandler.ExplainTerm)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			api.GET("/sse/stream", cfg.RealtimeHandler.Stream)
			api.POST("/sse/subscribe", cfg.RealtimeHandler.Subscribe)
			api.POST("/sse/unsubscribe", cfg.RealtimeHandler.Unsubscribe)
		}
	}

	return r
}

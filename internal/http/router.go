package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/riffbook-backend/internal/http/handlers"
	httpMW "github.com/yungbote/riffbook-backend/internal/http/middleware"
	"github.com/yungbote/riffbook-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware
	UserHandler    *httpH.UserHandler

	InstrumentHandler  *httpH.InstrumentHandler
	PracticeHandler    *httpH.PracticeHandler
	AchievementHandler *httpH.AchievementHandler
	GoalHandler        *httpH.GoalHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "riffbook-api"
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.PATCH("/me", cfg.UserHandler.UpdateMe)
		}

		// Instruments
		if cfg.InstrumentHandler != nil {
			protected.GET("/instruments", cfg.InstrumentHandler.List)
			protected.POST("/instruments", cfg.InstrumentHandler.Create)
			protected.DELETE("/instruments/:id", cfg.InstrumentHandler.Delete)
		}

		// Practice sessions
		if cfg.PracticeHandler != nil {
			protected.POST("/practice", cfg.PracticeHandler.Start)
			protected.GET("/practice", cfg.PracticeHandler.List)
			protected.GET("/practice/:id", cfg.PracticeHandler.Get)
			protected.DELETE("/practice/:id", cfg.PracticeHandler.Delete)
			protected.POST("/practice/:id/end", cfg.PracticeHandler.End)
			protected.POST("/practice/:id/comment", cfg.PracticeHandler.Comment)
		}

		// Achievements and stats
		if cfg.AchievementHandler != nil {
			protected.GET("/achievements", cfg.AchievementHandler.List)
			protected.POST("/achievements/check", cfg.AchievementHandler.Check)
			protected.GET("/stats", cfg.AchievementHandler.Stats)
		}

		// Goals
		if cfg.GoalHandler != nil {
			protected.GET("/goals", cfg.GoalHandler.List)
			protected.POST("/goals", cfg.GoalHandler.Create)
			protected.PUT("/goals/:id", cfg.GoalHandler.Update)
			protected.DELETE("/goals/:id", cfg.GoalHandler.Delete)
			protected.GET("/goals/:id/progress", cfg.GoalHandler.Progress)
		}
	}

	return r
}

package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/riffbook-backend/internal/http"
	httpH "github.com/yungbote/riffbook-backend/internal/http/handlers"
	httpMW "github.com/yungbote/riffbook-backend/internal/http/middleware"
	"github.com/yungbote/riffbook-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Auth        *httpH.AuthHandler
	User        *httpH.UserHandler
	Instrument  *httpH.InstrumentHandler
	Practice    *httpH.PracticeHandler
	Achievement *httpH.AchievementHandler
	Goal        *httpH.GoalHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(db),
		Auth:        httpH.NewAuthHandler(services.Auth),
		User:        httpH.NewUserHandler(services.User),
		Instrument:  httpH.NewInstrumentHandler(services.Instrument),
		Practice:    httpH.NewPracticeHandler(services.Practice),
		Achievement: httpH.NewAchievementHandler(services.Achievement),
		Goal:        httpH.NewGoalHandler(services.Goal),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *http.Server {
	return http.NewServer(":"+cfg.Port, http.RouterConfig{
		Log:                log,
		ServiceName:        cfg.Otel.ServiceName,
		AllowedOrigins:     cfg.AllowedOrigins,
		HealthHandler:      handlers.Health,
		AuthHandler:        handlers.Auth,
		AuthMiddleware:     middleware.Auth,
		UserHandler:        handlers.User,
		InstrumentHandler:  handlers.Instrument,
		PracticeHandler:    handlers.Practice,
		AchievementHandler: handlers.Achievement,
		GoalHandler:        handlers.Goal,
	})
}

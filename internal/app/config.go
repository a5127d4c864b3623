package app

import (
	"strings"
	"time"

	"github.com/yungbote/riffbook-backend/internal/clients/redis"
	"github.com/yungbote/riffbook-backend/internal/data/db"
	"github.com/yungbote/riffbook-backend/internal/observability"
	"github.com/yungbote/riffbook-backend/internal/platform/envutil"
	"github.com/yungbote/riffbook-backend/internal/platform/logger"
	"github.com/yungbote/riffbook-backend/internal/services"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	Port           string
	AllowedOrigins []string
	Location       *time.Location

	DBDriver   string
	Postgres   db.PostgresConfig
	SQLitePath string

	Redis redis.Config

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	AchievementCheckTimeout time.Duration
	AchievementLockWait     time.Duration

	Otel observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:           envutil.String("PORT", "8080"),
		AllowedOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil),
		Location:       services.LoadLocation(envutil.String("APP_TIMEZONE", ""), time.Local),

		DBDriver: strings.ToLower(envutil.String("DB_DRIVER", db.DriverPostgres)),
		Postgres: db.PostgresConfig{
			Host:     envutil.String("POSTGRES_HOST", "localhost"),
			Port:     envutil.String("POSTGRES_PORT", "5432"),
			User:     envutil.String("POSTGRES_USER", "postgres"),
			Password: envutil.String("POSTGRES_PASSWORD", ""),
			Name:     envutil.String("POSTGRES_NAME", "riffbook"),
			SSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
		},
		SQLitePath: envutil.String("SQLITE_PATH", "riffbook.db"),

		Redis: redis.Config{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			TTL:      envutil.Duration("ACHIEVEMENT_LOCK_TTL", 30*time.Second),
		},

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		AccessTokenTTL: envutil.Duration("ACCESS_TOKEN_TTL", 24*time.Hour),

		AchievementCheckTimeout: envutil.Duration("ACHIEVEMENT_CHECK_TIMEOUT", 30*time.Second),
		AchievementLockWait:     envutil.Duration("ACHIEVEMENT_LOCK_WAIT", 10*time.Second),

		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "riffbook-api"),
			Environment: envutil.String("OTEL_ENVIRONMENT", envutil.String("LOG_MODE", "development")),
			Version:     envutil.String("OTEL_SERVICE_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLE_RATIO", 1),
		},
	}

	if log != nil {
		log.Debug("Config loaded",
			"port", cfg.Port,
			"db_driver", cfg.DBDriver,
			"timezone", cfg.Location.String(),
			"redis_lock", cfg.Redis.Addr != "",
			"otel_enabled", cfg.Otel.Enabled,
		)
		if cfg.JWTSecretKey == defaultJWTSecret {
			log.Warn("JWT_SECRET_KEY not set, using the development default")
		}
	}
	return cfg
}

package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/riffbook-backend/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// NewSQLiteService opens a file-backed (or ":memory:") SQLite database.
// Writes are serialized through a single connection.
func NewSQLiteService(path string, logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "SQLiteService")
	if strings.TrimSpace(path) == "" {
		path = "riffbook.db"
	}

	db, err := gorm.Open(sqlite.Open(sqliteDSN(path)), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %q: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	serviceLog.Info("Opened sqlite", "path", path)
	return &Service{db: db, driver: DriverSQLite, log: serviceLog}, nil
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

// Open picks the driver by name; anything other than sqlite means postgres.
func Open(driver string, pg PostgresConfig, sqlitePath string, logg *logger.Logger) (*Service, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverSQLite:
		return NewSQLiteService(sqlitePath, logg)
	default:
		return NewPostgresService(pg, logg)
	}
}

package db

import (
	"testing"

	"github.com/yungbote/riffbook-backend/internal/platform/logger"
)

func testLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logg, err := logger.New("test")
	if err != nil {
		tb.Fatalf("logger: %v", err)
	}
	return logg
}

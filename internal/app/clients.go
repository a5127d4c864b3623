package app

import (
	"fmt"

	"github.com/yungbote/riffbook-backend/internal/clients/redis"
	"github.com/yungbote/riffbook-backend/internal/platform/logger"
)

type Clients struct {
	UserLocker redis.UserLocker
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	locker, err := redis.NewUserLocker(cfg.Redis, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init user locker: %w", err)
	}

	return Clients{
		UserLocker: locker,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.UserLocker != nil {
		_ = c.UserLocker.Close()
	}
}

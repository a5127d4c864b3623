package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/riffbook-backend/internal/platform/logger"
)

var ErrLockTimeout = errors.New("user lock not acquired")

// UserLocker serializes work per user. Unlock is safe to call more than once.
type UserLocker interface {
	Lock(ctx context.Context, userID uuid.UUID) (unlock func(), err error)
	Close() error
}

type Config struct {
	Addr     string
	Password string
	DB       int
	// TTL bounds how long a crashed holder can keep the lock.
	TTL time.Duration
}

const (
	lockKeyPrefix  = "riffbook:lock:achievements:"
	lockPollEvery  = 50 * time.Millisecond
	defaultLockTTL = 30 * time.Second
	redisTimeout   = 5 * time.Second
)

// releaseScript deletes the key only while it still holds our token, so an
// expired holder never releases a lock someone else has since taken.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisUserLocker struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewUserLocker returns a Redis-backed locker when cfg.Addr is set and
// reachable, otherwise an in-process one.
func NewUserLocker(cfg Config, log *logger.Logger) (UserLocker, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultLockTTL
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		log.Info("REDIS_ADDR not set, using in-process user lock")
		return NewLocalUserLocker(), nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisUserLocker{
		log: log.With("service", "RedisUserLocker"),
		rdb: rdb,
		ttl: cfg.TTL,
	}, nil
}

func (l *redisUserLocker) Lock(ctx context.Context, userID uuid.UUID) (func(), error) {
	key := lockKeyPrefix + userID.String()
	token := uuid.NewString()

	ticker := time.NewTicker(lockPollEvery)
	defer ticker.Stop()
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis setnx: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's ctx may already be done by now.
			rctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
			defer cancel()
			if err := releaseScript.Run(rctx, l.rdb, []string{key}, token).Err(); err != nil {
				l.log.Warn("Failed to release user lock", "user_id", userID, "error", err)
			}
		})
	}, nil
}

func (l *redisUserLocker) Close() error {
	return l.rdb.Close()
}

type localUserLocker struct {
	mu   sync.Mutex
	held map[uuid.UUID]chan struct{}
}

func NewLocalUserLocker() UserLocker {
	return &localUserLocker{held: make(map[uuid.UUID]chan struct{})}
}

func (l *localUserLocker) Lock(ctx context.Context, userID uuid.UUID) (func(), error) {
	for {
		l.mu.Lock()
		done, busy := l.held[userID]
		if !busy {
			done = make(chan struct{})
			l.held[userID] = done
			l.mu.Unlock()
			break
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
		case <-done:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			ch := l.held[userID]
			delete(l.held, userID)
			l.mu.Unlock()
			close(ch)
		})
	}, nil
}

func (l *localUserLocker) Close() error { return nil }

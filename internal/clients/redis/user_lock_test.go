package redis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/riffbook-backend/internal/platform/logger"
)

func TestNewUserLocker_FallsBackWithoutAddr(t *testing.T) {
	l, err := NewUserLocker(Config{}, logger.Nop())
	if err != nil {
		t.Fatalf("NewUserLocker: %v", err)
	}
	if _, ok := l.(*localUserLocker); !ok {
		t.Fatalf("expected in-process locker, got %T", l)
	}
}

func TestLocalUserLocker_SerializesPerUser(t *testing.T) {
	l := NewLocalUserLocker()
	userID := uuid.New()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), userID)
			if err != nil {
				t.Errorf("Lock: %v", err)
				return
			}
			defer unlock()
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()
	if maxInside != 1 {
		t.Fatalf("expected one holder at a time, saw %d", maxInside)
	}
}

func TestLocalUserLocker_OtherUsersDoNotBlock(t *testing.T) {
	l := NewLocalUserLocker()
	unlock, err := l.Lock(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	other, err := l.Lock(ctx, uuid.New())
	if err != nil {
		t.Fatalf("Lock for a different user: %v", err)
	}
	other()
}

func TestLocalUserLocker_TimesOut(t *testing.T) {
	l := NewLocalUserLocker()
	userID := uuid.New()
	unlock, err := l.Lock(context.Background(), userID)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, userID); !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}

	unlock()
	unlock()
	again, err := l.Lock(context.Background(), userID)
	if err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
	again()
}

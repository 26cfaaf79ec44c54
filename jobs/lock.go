package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// Guard evita que dos corridas del mismo job se solapen entre procesos.
type Guard struct {
	locker *redislock.Client
	ttl    time.Duration
}

// NewGuard crea el guardia sobre un cliente redis. ttl debe cubrir la duración esperada del job.
func NewGuard(rdb redis.UniversalClient, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Guard{locker: redislock.New(rdb), ttl: ttl}
}

// Do ejecuta fn si obtiene el candado key. ran es false si otra corrida lo tiene.
func (g *Guard) Do(ctx context.Context, key string, fn func(ctx context.Context) error) (ran bool, err error) {
	lock, err := g.locker.Obtain(ctx, "lock:"+key, g.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("obtener candado %s: %w", key, err)
	}
	defer func() { _ = lock.Release(context.Background()) }()
	return true, fn(ctx)
}

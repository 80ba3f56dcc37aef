package redisstore

import (
	"context"
	"time"

	"fxrates-ingest/internal/application"
	"fxrates-ingest/internal/infrastructure/logx"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ application.TickLock = (*TickLock)(nil)

// releaseScript deletes the key only while it still holds our token, so a
// lease that expired and was taken over is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// TickLock is a lease shared by every process pointed at the same Redis. TTL
// bounds how long a crashed holder can block others.
type TickLock struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewTickLock(client *redis.Client, ttl time.Duration) *TickLock {
	return &TickLock{Client: client, TTL: ttl}
}

func (l *TickLock) TryAcquire(ctx context.Context, key string) (func(context.Context), bool, error) {
	token := uuid.NewString()
	ok, err := l.Client.SetNX(ctx, key, token, l.TTL).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func(ctx context.Context) {
		if err := releaseScript.Run(ctx, l.Client, []string{key}, token).Err(); err != nil {
			logx.L().Warn("tick_lock.release_failed", zap.String("key", key), zap.Error(err))
		}
	}
	return release, true, nil
}

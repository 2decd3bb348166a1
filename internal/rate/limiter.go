// Package rate implementa rate limiting de ventana fija por clave.
package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// Result resultado de un intento.
type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
	Limit       int64
}

// Limiter decide si una clave puede hacer otra request en la ventana actual.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// RedisLimiter fixed window sencillo (INCR + EXPIRE). Compartido entre réplicas.
type RedisLimiter struct {
	Client *rdb.Client
	Prefix string
	Max    int64
	Window time.Duration

	now func() time.Time
}

func NewRedisLimiter(client *rdb.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{
		Client: client,
		Prefix: prefix,
		Max:    int64(max),
		Window: window,
		now:    time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	winStart := l.now().UTC().Truncate(l.Window)
	redisKey := fmt.Sprintf("%s%s:%d", l.Prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())

	pipe := l.Client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate: redis: %w", err)
	}

	// expiry en el primer hit de la ventana
	ttlVal := ttl.Val()
	if incr.Val() == 1 || ttlVal < 0 {
		if err := l.Client.Expire(ctx, redisKey, l.Window).Err(); err != nil {
			return Result{}, fmt.Errorf("rate: redis expire: %w", err)
		}
		ttlVal = l.Window
	}
	return newResult(incr.Val(), l.Max, ttlVal, l.Window), nil
}

func newResult(hits, max int64, ttl, window time.Duration) Result {
	remaining := max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{
		Allowed:     hits <= max,
		Remaining:   remaining,
		CurrentHits: hits,
		WindowTTL:   ttl,
		Limit:       max,
	}
	if !res.Allowed {
		// Retry after: resto de la ventana, redondeado al segundo
		res.RetryAfter = ttl
		if res.RetryAfter <= 0 {
			res.RetryAfter = window
		}
		res.RetryAfter = res.RetryAfter.Round(time.Second)
		if res.RetryAfter < time.Second {
			res.RetryAfter = time.Second
		}
	}
	return res
}

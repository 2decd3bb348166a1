package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter fixed window en proceso (go-cache). Sólo sirve con una réplica.
type MemoryLimiter struct {
	c      *gocache.Cache
	Max    int64
	Window time.Duration

	now func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, 2*window),
		Max:    int64(max),
		Window: window,
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now().UTC()
	winStart := now.Truncate(l.Window)
	winEnd := winStart.Add(l.Window)
	k := fmt.Sprintf("%s:%d", strings.ReplaceAll(key, " ", "_"), winStart.Unix())

	hits, err := l.incr(k, winEnd.Sub(now))
	if err != nil {
		return Result{}, err
	}
	return newResult(hits, l.Max, winEnd.Sub(now), l.Window), nil
}

// incr: Add e IncrementInt64 son atómicos por separado; si la clave expira
// entre ambos se reintenta el Add.
func (l *MemoryLimiter) incr(k string, ttl time.Duration) (int64, error) {
	for i := 0; i < 3; i++ {
		if err := l.c.Add(k, int64(1), ttl); err == nil {
			return 1, nil
		}
		if n, err := l.c.IncrementInt64(k, 1); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("rate: counter %q unavailable", k)
}

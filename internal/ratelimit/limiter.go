package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/pistache/internal/clock"
	"github.com/smallbiznis/pistache/internal/config"
	obsmetrics "github.com/smallbiznis/pistache/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const keyEndpointClient = "ratelimit:%s:%s"

const (
	// maxLocalKeys caps the in-process buckets; past it the least recently
	// used key is evicted.
	maxLocalKeys       = 10000
	localSweepInterval = time.Minute
)

type localBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// Limiter applies per-endpoint, per-client token buckets. It uses Redis when a
// client is configured and an in-process bucket per key otherwise.
type Limiter struct {
	bucket  *TokenBucket
	log     *zap.Logger
	metrics *obsmetrics.Metrics

	clock clock.Clock

	mu        sync.Mutex
	local     map[string]*localBucket
	lastSweep time.Time
}

type LimiterParams struct {
	fx.In

	Redis   *redis.Client `optional:"true"`
	Log     *zap.Logger
	Metrics *obsmetrics.Metrics `optional:"true"`
	Clock   clock.Clock         `optional:"true"`
}

func NewLimiter(p LimiterParams) *Limiter {
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Limiter{
		bucket:  NewTokenBucket(p.Redis),
		log:     p.Log.Named("ratelimit"),
		metrics: p.Metrics,
		clock:   clk,
		local:   make(map[string]*localBucket),
	}
}

// Allow consumes one token for client on endpoint. Redis failures fail open.
func (l *Limiter) Allow(ctx context.Context, endpoint, client string, rule config.RateLimitRule) RateLimitResult {
	key := fmt.Sprintf(keyEndpointClient, strings.TrimSpace(endpoint), strings.TrimSpace(client))

	var result RateLimitResult
	if l.bucket != nil {
		res, err := l.bucket.Allow(ctx, key, rule.Rate, rule.Burst)
		if err != nil {
			l.log.Warn("rate limit check failed, allowing request", zap.String("endpoint", endpoint), zap.Error(err))
			result = RateLimitResult{Allowed: true, Limit: rule.Burst}
		} else {
			result = *res
		}
	} else {
		result = l.allowLocal(key, rule)
	}

	if result.Allowed {
		l.metrics.RecordRateLimitAllowed(ctx, endpoint)
	} else {
		l.metrics.RecordRateLimitDenied(ctx, endpoint, "rate_limited")
	}
	return result
}

func (l *Limiter) allowLocal(key string, rule config.RateLimitRule) RateLimitResult {
	if validateRule(key, rule.Rate, rule.Burst) != nil {
		return RateLimitResult{Allowed: true, Limit: rule.Burst}
	}

	now := l.clock.Now()

	l.mu.Lock()
	b, ok := l.local[key]
	if !ok || b.lim.Burst() != rule.Burst || b.lim.Limit() != rate.Limit(rule.Rate) {
		if !ok {
			l.makeRoomLocked(now)
		}
		b = &localBucket{lim: rate.NewLimiter(rate.Limit(rule.Rate), rule.Burst)}
		l.local[key] = b
	}
	b.lastSeen = now
	allowed := b.lim.AllowN(now, 1)
	remaining := b.lim.TokensAt(now)
	l.mu.Unlock()

	return RateLimitResult{
		Allowed:    allowed,
		Limit:      rule.Burst,
		Remaining:  int(remaining),
		RetryAfter: retryAfter(allowed, remaining, rule.Rate),
	}
}

// makeRoomLocked drops buckets that have refilled completely, since a full
// bucket behaves like a new one. It runs at most once per sweep interval
// unless the map is at its cap, where the least recently used key goes too.
func (l *Limiter) makeRoomLocked(now time.Time) {
	full := len(l.local) >= maxLocalKeys
	if !full && now.Sub(l.lastSweep) < localSweepInterval {
		return
	}
	l.lastSweep = now
	for key, b := range l.local {
		if b.lim.TokensAt(now) >= float64(b.lim.Burst()) {
			delete(l.local, key)
		}
	}
	if len(l.local) < maxLocalKeys {
		return
	}
	var (
		oldestKey string
		oldest    time.Time
	)
	for key, b := range l.local {
		if oldestKey == "" || b.lastSeen.Before(oldest) {
			oldestKey, oldest = key, b.lastSeen
		}
	}
	delete(l.local, oldestKey)
}

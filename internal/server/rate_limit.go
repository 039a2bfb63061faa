package server

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/pistache/internal/config"
	"github.com/smallbiznis/pistache/internal/observability/logger"
	"go.uber.org/zap"
)

type rateLimitRuleFunc func(config.StorefrontConfig) config.RateLimitRule

func newsletterRule(cfg config.StorefrontConfig) config.RateLimitRule {
	return cfg.RateLimits.Newsletter
}

func mediaRule(cfg config.StorefrontConfig) config.RateLimitRule {
	return cfg.RateLimits.Media
}

// RateLimit applies a per-client token bucket to the route. The rule is read
// on every request so storefront.yml reloads take effect immediately.
func (s *Server) RateLimit(rule rateLimitRuleFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		endpoint := normalizeRateLimitEndpoint(c)
		res := s.limiter.Allow(ctx, endpoint, c.ClientIP(), rule(s.storefront.Get()))

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			denyRateLimit(ctx, c, endpoint, res.RetryAfter.Seconds())
			return
		}
		c.Next()
	}
}

func denyRateLimit(ctx context.Context, c *gin.Context, endpoint string, retryAfterSeconds float64) {
	logger.FromContext(ctx).Warn("rate limit exceeded",
		zap.String("endpoint", endpoint),
	)

	retry := int(math.Ceil(retryAfterSeconds))
	if retry < 1 {
		retry = 1
	}
	c.Header("Retry-After", strconv.Itoa(retry))
	AbortWithError(c, ErrRateLimited)
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	if c == nil {
		return "unknown"
	}
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}

package security

import (
	"fmt"
	"net"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// PaymentEndpointLimit caps callback traffic per caller. Webhook retries
// from the provider are not routed through this; only client-facing payment
// endpoints are.
func (r *RateLimiter) PaymentEndpointLimit(maxPerMinute int64) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		key := fmt.Sprintf("ratelimit:payment:%s", r.callerKey(e))

		count, err := r.redis.Incr(e.Request.Context(), key).Result()
		if err != nil {
			// Redis trouble never blocks payments.
			return e.Next()
		}

		if count == 1 {
			r.redis.Expire(e.Request.Context(), key, time.Minute)
		}
		if count > maxPerMinute {
			return apis.NewTooManyRequestsError("Too many requests", nil)
		}

		return e.Next()
	}
}

func (r *RateLimiter) callerKey(e *core.RequestEvent) string {
	if e.Auth != nil {
		return fmt.Sprintf("user:%s", e.Auth.Id)
	}

	host, _, err := net.SplitHostPort(e.Request.RemoteAddr)
	if err != nil {
		return e.Request.RemoteAddr
	}
	return host
}

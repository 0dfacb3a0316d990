package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/promptlab-api/internal/ratelimit"
	"github.com/noah-isme/promptlab-api/internal/utils"
)

// RateLimit enforces the limiter quota per caller identity. A nil limiter disables the check.
// Counters live in the limiter's Store under its scope, so limiters built on the same
// Store and scope, including those used by the services, draw from one quota.
func RateLimit(limiter *ratelimit.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}

		decision, err := limiter.Check(c.UserContext(), CallerIdentity(c))
		if err != nil {
			return utils.SendError(c, fiber.StatusServiceUnavailable, "request cancelled")
		}

		SetRateLimitHeaders(c, decision)
		if !decision.Allowed {
			return utils.SendError(c, fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}

// SetRateLimitHeaders exposes a quota decision to the client.
func SetRateLimitHeaders(c *fiber.Ctx, decision ratelimit.Decision) {
	if decision.Limit <= 0 {
		return
	}
	c.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
	if !decision.Allowed {
		retry := int(math.Ceil(time.Until(decision.ResetAt).Seconds()))
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(max(1, retry)))
	}
}

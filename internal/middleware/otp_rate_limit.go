package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// event types that trigger a sign-in code email; everything else passes
// untouched.
var codeDispatchEvents = map[string]bool{
	"submit_signup": true,
	"resend_code":   true,
}

// OTPRateLimit caps how often one client can trigger a sign-in code email.
// Counting happens in Redis per client IP with a one-minute window; without
// Redis, or on cache errors, it fails open.
func OTPRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		var ev struct {
			Type string `json:"type"`
		}
		_ = c.BodyParser(&ev)
		if !codeDispatchEvents[strings.TrimSpace(ev.Type)] {
			return c.Next()
		}

		key := "rl:otp:" + c.IP()
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many code requests, try again later")
		}
		return c.Next()
	}
}

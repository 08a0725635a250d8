package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/phoneid/phoneid/internal/credential"
)

// VerifyRateLimit caps verification requests per phone number (falling back
// to the client IP) using Redis if available. Fails open on cache errors so a
// Redis outage does not take the verification flow down with it.
func VerifyRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		var req struct {
			CountryCode string `json:"countryCode"`
			Phone       string `json:"phone"`
		}
		_ = c.BodyParser(&req)
		key := strings.TrimSpace(credential.CombinePhone(req.CountryCode, req.Phone))
		if key == "" {
			key = c.IP()
		}
		key = "rl:verify:" + key
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err == nil && cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if err != nil {
			return c.Next()
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many verification requests, try again later")
		}
		return c.Next()
	}
}

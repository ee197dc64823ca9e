package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RedeemRateLimit caps card redemption attempts per user or IP using Redis if
// available. Redemption failures are deliberately indistinguishable, so the
// rate limit is the only brake on card password guessing.
func RedeemRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next() // no-op without Redis
		}
		var req struct {
			UserID int64 `json:"user_id"`
		}
		_ = c.BodyParser(&req)
		subject := c.IP()
		if req.UserID > 0 {
			subject = fmt.Sprintf("user:%d", req.UserID)
		}
		key := "rl:redeem:" + subject
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err == nil && cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if err != nil {
			return c.Next() // fail-open on cache errors
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many redemption attempts, try again later")
		}
		return c.Next()
	}
}

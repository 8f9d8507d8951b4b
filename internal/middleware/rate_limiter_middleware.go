package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"alfredoptarigan/career-assistant/internal/models"
)

// BurstLimiter caps how many requests one client IP may send per window. It
// sits in front of the daily quotas and only absorbs floods.
func BurstLimiter(max int, expiration time.Duration) fiber.Handler {
	if max <= 0 {
		max = 20
	}
	if expiration <= 0 {
		expiration = 1 * time.Minute
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: expiration,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error:      "rate_limit_exceeded",
				Message:    "Too many requests in a short period.",
				Suggestion: "Please wait a minute before trying again.",
			})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}

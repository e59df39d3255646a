package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	fiberredis "github.com/gofiber/storage/redis/v3"
	"github.com/redis/go-redis/v9"

	"github.com/ridhamz/AppointmentEase/config"
)

func NewLimiterWithRedis(rdb *redis.Client, cfg config.RateLimitConfig) fiber.Handler {
	limit := cfg.Max
	if limit <= 0 {
		limit = 20
	}
	expiration := time.Duration(cfg.ExpirationSeconds) * time.Second
	if expiration <= 0 {
		expiration = 30 * time.Second
	}

	lc := limiter.Config{
		// sliding window
		Max:               limit,
		Expiration:        expiration,
		LimiterMiddleware: limiter.SlidingWindow{},
	}
	// without redis the limiter keeps its counters in memory
	if rdb != nil {
		lc.Storage = fiberredis.NewFromConnection(rdb)
	}
	return limiter.New(lc)
}

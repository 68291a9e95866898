package serverutils

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware allows perMinute requests per client IP with a burst of
// the same size. perMinute <= 0 disables the limit.
func RateLimitMiddleware(perMinute int) fiber.Handler {
	if perMinute <= 0 {
		return func(ctx *fiber.Ctx) error { return ctx.Next() }
	}

	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)
	every := rate.Every(time.Minute / time.Duration(perMinute))

	return func(ctx *fiber.Ctx) error {
		ip := ctx.IP()
		mu.Lock()
		l, ok := limiters[ip]
		if !ok {
			l = rate.NewLimiter(every, perMinute)
			limiters[ip] = l
		}
		mu.Unlock()

		if !l.Allow() {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse(fiber.StatusTooManyRequests, "Too many requests"))
		}
		return ctx.Next()
	}
}

package middleware

import (
    "fmt"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/school-records/internal/config"
)

// RateLimit returns a fixed-window limiter keyed on caller and route, meant
// for the result upload endpoint. Each window is one Redis counter with a
// TTL; the first increment of a window sets the expiry. When the limiter is
// disabled, Redis is unavailable or a Redis call fails mid-request, requests
// pass through rather than being blocked.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := rateKey(cfg.Prefix, c)
            ctx := c.Request().Context()

            n, err := rdb.Incr(ctx, key).Result()
            if err != nil {
                return next(c)
            }
            if n == 1 {
                _ = rdb.Expire(ctx, key, cfg.Window).Err()
            }

            remaining := int64(cfg.Limit) - n
            if remaining < 0 {
                remaining = 0
            }
            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
            c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

            if n > int64(cfg.Limit) {
                ttl, err := rdb.TTL(ctx, key).Result()
                if err != nil || ttl < 0 {
                    ttl = cfg.Window
                }
                c.Response().Header().Set("Retry-After", strconv.Itoa(int(ttl/time.Second)+1))
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "status":  "error",
                    "message": "Too many requests",
                })
            }
            return next(c)
        }
    }
}

// rateKey buckets counters per caller per route: authenticated callers by
// account id, anonymous ones by client IP.
func rateKey(prefix string, c echo.Context) string {
    who := "ip:" + c.RealIP()
    if id, ok := CallerIdentity(c); ok {
        who = fmt.Sprintf("user:%d", id.ID)
    }
    return prefix + ":" + who + ":" + c.Request().Method + ":" + c.Path()
}

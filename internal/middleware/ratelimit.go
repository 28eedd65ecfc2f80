package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/task-tracker/internal/config"
)

// refillAndTake tops the bucket up continuously for the time elapsed since
// its last use, then takes one token. All arithmetic happens inside redis so
// concurrent server instances share one budget.
//
// KEYS[1] bucket; ARGV now_ms, burst, rate, period_ms, idle_ms.
// Returns {admitted 0|1, whole tokens left, wait_ms}.
var refillAndTake = redis.NewScript(`
local now = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local per_ms = tonumber(ARGV[3]) / tonumber(ARGV[4])

local b = redis.call('HMGET', KEYS[1], 'level', 'ts')
local level = tonumber(b[1]) or burst
local ts = tonumber(b[2]) or now
level = math.min(burst, level + math.max(0, now - ts) * per_ms)

local admitted, wait = 0, 0
if level >= 1 then
	admitted = 1
	level = level - 1
else
	wait = math.ceil((1 - level) / per_ms)
end

redis.call('HSET', KEYS[1], 'level', tostring(level), 'ts', tostring(now))
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return {admitted, math.floor(level), wait}
`)

type verdict struct {
	admitted  bool
	remaining int64
	wait      time.Duration
}

// RateLimit admits requests while the caller's bucket holds tokens and
// answers 429 otherwise. Disabled config or a nil client turn it into a
// no-op. Redis trouble lets the request through.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client, log *logrus.Logger) echo.MiddlewareFunc {
	return rateLimit(cfg, rdb, log, time.Now)
}

func rateLimit(cfg config.RateLimitConfig, rdb *redis.Client, log *logrus.Logger, now func() time.Time) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	limit := strconv.Itoa(cfg.Burst)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			v, err := take(c.Request().Context(), rdb, cfg, key, now())
			if err != nil {
				log.WithError(err).WithField("key", key).Warn("rate limit check failed, admitting")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(v.remaining, 10))
			if v.admitted {
				return next(c)
			}

			secs := int(math.Ceil(v.wait.Seconds()))
			if secs < 1 {
				secs = 1
			}
			h.Set("Retry-After", strconv.Itoa(secs))
			log.WithFields(logrus.Fields{"key": key, "wait_ms": v.wait.Milliseconds()}).Debug("rate limited")
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "rate limit exceeded",
				"retry_after": secs,
			})
		}
	}
}

func take(ctx context.Context, rdb redis.Scripter, cfg config.RateLimitConfig, key string, now time.Time) (verdict, error) {
	raw, err := refillAndTake.Run(ctx, rdb, []string{key},
		now.UnixMilli(),
		cfg.Burst,
		cfg.Rate,
		cfg.Period.Milliseconds(),
		cfg.Idle().Milliseconds(),
	).Result()
	if err != nil {
		return verdict{}, err
	}
	return parseVerdict(raw)
}

// parseVerdict decodes the script's reply. Redis hands Lua numbers back as
// integers.
func parseVerdict(raw interface{}) (verdict, error) {
	arr, ok := raw.([]interface{})
	if !ok || len(arr) != 3 {
		return verdict{}, fmt.Errorf("unexpected rate limit reply %#v", raw)
	}
	nums := make([]int64, 3)
	for i, x := range arr {
		n, ok := x.(int64)
		if !ok {
			return verdict{}, fmt.Errorf("rate limit reply element %d is %T", i, x)
		}
		nums[i] = n
	}
	return verdict{
		admitted:  nums[0] == 1,
		remaining: nums[1],
		wait:      time.Duration(nums[2]) * time.Millisecond,
	}, nil
}

// rateKey joins the prefix with the dimensions named in cfg.KeyBy, e.g.
// "tt:rl:ip=10.0.0.1:user=42".
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	parts := []string{cfg.Prefix}
	for _, dim := range cfg.KeyBy {
		switch dim {
		case config.KeyByIP:
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			parts = append(parts, "ip="+ip)
		case config.KeyByUser:
			parts = append(parts, "user="+userKey(c))
		case config.KeyByRoute:
			parts = append(parts, "route="+c.Request().Method+" "+c.Path())
		}
	}
	return strings.Join(parts, ":")
}

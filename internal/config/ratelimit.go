package config

import (
	"strings"
	"time"
)

// Rate limit key dimensions.
const (
	KeyByIP    = "ip"
	KeyByUser  = "user"
	KeyByRoute = "route"
)

// RateLimitConfig is the per-client request budget enforced through redis.
// Up to Burst requests are admitted at once; after that the bucket regains
// Rate tokens every Period.
type RateLimitConfig struct {
	Enabled bool
	Burst   int
	Rate    int
	Period  time.Duration
	KeyBy   []string // subset of ip, user, route; order is kept in the key
	Prefix  string
}

// Idle is how long an untouched bucket is kept in redis: the time to refill
// from empty, plus one period.
func (c RateLimitConfig) Idle() time.Duration {
	if c.Rate <= 0 || c.Period <= 0 {
		return time.Minute
	}
	return c.Period*time.Duration((c.Burst+c.Rate-1)/c.Rate) + c.Period
}

func LoadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled: envBool("RATE_LIMIT_ENABLED", false),
		Burst:   envInt("RATE_LIMIT_BURST", 60),
		Rate:    envInt("RATE_LIMIT_RATE", 1),
		Period:  envDur("RATE_LIMIT_PERIOD", time.Second),
		KeyBy:   parseKeyBy(envStr("RATE_LIMIT_KEY_BY", "ip,user,route")),
		Prefix:  envStr("RATE_LIMIT_PREFIX", "tt:rl"),
	}
}

// parseKeyBy keeps the known dimensions of a comma list, deduplicated.
// Nothing usable means all three.
func parseKeyBy(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		switch p {
		case KeyByIP, KeyByUser, KeyByRoute:
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	if len(out) == 0 {
		return []string{KeyByIP, KeyByUser, KeyByRoute}
	}
	return out
}

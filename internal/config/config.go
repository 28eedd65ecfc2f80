package config // package config loads application configuration from the environment

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/task-tracker/internal/utils"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable; unset or malformed values fall back to defaults.
type Config struct {
	Env        string        // application environment (e.g. "dev", "prod")
	Port       string        // HTTP port to listen on
	DataDir    string        // directory holding users.json, tasks.json, sessions.json, lastIDs.json
	LogLevel   string        // logrus level name
	SessionTTL time.Duration // how long a session token is accepted after login

	// SweepSchedule is a cron spec (e.g. "@every 10m") for evicting expired
	// sessions in the background. Empty keeps the lazy per-request sweep only.
	SweepSchedule string

	Argon2Time      uint32 // Argon2id iterations
	Argon2MemoryKiB uint32 // Argon2id memory in KiB
	Argon2Threads   uint8  // Argon2id parallelism

	ShutdownTimeout time.Duration // grace period for in-flight requests on SIGTERM

	RateLimit RateLimitConfig
	Events    EventsConfig

	// Notices lists settings Load replaced with safe values; log them at startup.
	Notices []string
}

// Load reads an optional .env file and then the environment.
func Load() Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	c := Config{
		Env:             envStr("APP_ENV", "dev"),
		Port:            envStr("APP_PORT", "3000"),
		DataDir:         envStr("DATA_DIR", "data"),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		SessionTTL:      envDur("SESSION_TTL", 24*time.Hour),
		SweepSchedule:   strings.TrimSpace(os.Getenv("SESSION_SWEEP_SCHEDULE")),
		ShutdownTimeout: envDur("SHUTDOWN_TIMEOUT", 10*time.Second),
		RateLimit:       LoadRateLimitConfig(),
		Events:          LoadEventsConfig(),
	}
	c.loadArgon2()
	return c
}

// loadArgon2 reads the hashing cost. Anything below the library defaults is
// raised to them; cheaper settings are for tests, which build the hasher
// directly.
func (c *Config) loadArgon2() {
	d := utils.DefaultArgon2Params
	c.Argon2Time = uint32(c.atLeast("ARGON2_TIME", int(d.Time), math.MaxUint32))
	c.Argon2MemoryKiB = uint32(c.atLeast("ARGON2_MEMORY_KIB", int(d.Memory), math.MaxUint32))
	c.Argon2Threads = uint8(c.atLeast("ARGON2_THREADS", int(d.Threads), math.MaxUint8))
}

// atLeast reads k as an int in [floor, ceil]. Values below floor are raised
// to it, values above ceil fall back to floor; both are noted.
func (c *Config) atLeast(k string, floor int, ceil int64) int {
	n := envInt(k, floor)
	switch {
	case int64(n) > ceil:
		c.Notices = append(c.Notices, fmt.Sprintf("%s=%d exceeds %d, using %d", k, n, ceil, floor))
		return floor
	case n < floor:
		c.Notices = append(c.Notices, fmt.Sprintf("%s=%d is below the minimum, using %d", k, n, floor))
		return floor
	}
	return n
}

func envStr(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil && dur > 0 {
		return dur
	}
	return d
}

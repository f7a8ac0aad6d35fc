package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig configures the Redis token bucket. Submit* fields size a
// second, stricter bucket applied to booking, payment and cancel calls,
// which each cost one or more upstream mutations.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool

	SubmitCapacity       int
	SubmitRefillInterval time.Duration
}

func LoadRateLimitConfig() RateLimitConfig {
	def := RateLimitConfig{
		Enabled:              envBool("RATE_LIMIT_ENABLED", true),
		Capacity:             envInt("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:         envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval:       envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:                  envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:          envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
		Prefix:               envStr("RATE_LIMIT_PREFIX", "gw:rl"),
		Debug:                envBool("RATE_LIMIT_DEBUG", false),
		SubmitCapacity:       envInt("RATE_LIMIT_SUBMIT_CAPACITY", 10),
		SubmitRefillInterval: envDur("RATE_LIMIT_SUBMIT_REFILL_INTERVAL", 6*time.Second),
	}
	if b := envInt("RATE_LIMIT_BURST", -1); b > 0 {
		def.Capacity = b
	}
	if def.Capacity < 1 {
		def.Capacity = 1
	}
	if def.RefillTokens < 1 {
		def.RefillTokens = 1
	}
	if def.RefillInterval <= 0 {
		def.RefillInterval = time.Second
	}
	if def.SubmitCapacity < 1 {
		def.SubmitCapacity = 1
	}
	if def.SubmitRefillInterval <= 0 {
		def.SubmitRefillInterval = 6 * time.Second
	}
	minTTL := 5 * def.RefillInterval
	if s := 5 * def.SubmitRefillInterval; s > minTTL {
		minTTL = s
	}
	if def.TTL < minTTL {
		def.TTL = minTTL
	}
	return def
}

// Submit returns the bucket settings for mutation routes: its own key
// prefix, the submit capacity and one token per SubmitRefillInterval.
func (c RateLimitConfig) Submit() RateLimitConfig {
	s := c
	s.Prefix = c.Prefix + ":submit"
	s.Capacity = c.SubmitCapacity
	s.RefillTokens = 1
	s.RefillInterval = c.SubmitRefillInterval
	s.KeyStrategy = "user"
	return s
}

// RatePerMilli is the refill speed the limiter script works with.
func (c RateLimitConfig) RatePerMilli() float64 {
	ms := c.RefillInterval.Milliseconds()
	if ms <= 0 {
		return 0
	}
	return float64(c.RefillTokens) / float64(ms)
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}

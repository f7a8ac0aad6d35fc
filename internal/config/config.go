package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the gateway's runtime configuration. Each field corresponds
// to an environment variable. Redis, cache and rate limit settings have
// their own loaders.
type Config struct {
	Env              string        // application environment (e.g. "dev", "prod")
	Port             string        // HTTP port to listen on
	UpstreamURL      string        // base URL of the travel API, e.g. https://api.example.com/api
	UpstreamTimeout  time.Duration // per-request timeout towards the API; 0 disables it
	JWTSecret        string        // when set, bearer tokens are signature-checked before use
	AdminRole        string        // role claim required on /v1/admin routes
	DBUser           string        // ledger database user
	DBPass           string        // ledger database password (optional)
	DBHost           string        // ledger database host; empty disables the ledger
	DBPort           string        // ledger database port
	DBName           string        // ledger database name
	AMQPURL          string        // RabbitMQ URL; empty disables booking events
	BookingLogPath   string        // file the booking event consumer appends to
	SubmitGuardTTL   time.Duration // how long an in-flight submission blocks an identical one
	CORSAllowOrigins []string      // allowed browser origins
}

// Load reads configuration values from environment variables. Required
// variables are enforced by must() and missing values cause the program to
// exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:              envStr("APP_ENV", "dev"),
		Port:             must("APP_PORT"),
		UpstreamURL:      must("UPSTREAM_API_URL"),
		UpstreamTimeout:  mustDur("UPSTREAM_TIMEOUT", 0),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		AdminRole:        envStr("ADMIN_ROLE", "admin"),
		DBHost:           os.Getenv("DB_HOST"),
		AMQPURL:          os.Getenv("RABBITMQ_URL"),
		BookingLogPath:   envStr("BOOKING_LOG_PATH", "logs/booking.log"),
		SubmitGuardTTL:   mustDur("SUBMIT_GUARD_TTL", 30*time.Second),
		CORSAllowOrigins: splitList(envStr("CORS_ALLOW_ORIGINS", "*")),
	}
	if cfg.AMQPURL == "" {
		cfg.AMQPURL = os.Getenv("AMQP_URL")
	}
	// the ledger is optional, but once a host is given the rest is required
	if cfg.DBHost != "" {
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS")
		cfg.DBPort = envStr("DB_PORT", "3306")
		cfg.DBName = must("DB_NAME")
	}
	return cfg
}

// LedgerEnabled reports whether a submission ledger database is configured.
func (c Config) LedgerEnabled() bool { return c.DBHost != "" }

// EventsEnabled reports whether booking events go to a broker.
func (c Config) EventsEnabled() bool { return c.AMQPURL != "" }

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustDur parses an optional duration; a value that is set but malformed
// is fatal rather than silently replaced by the default.
func mustDur(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	// plain integers are seconds
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second
	}
	log.Fatalf("invalid duration for %s: %q", key, s)
	return 0
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

// Redis backs the rate limiter, the catalog response cache and the
// in-flight submission guard. If the connection fails during startup the
// constructor returns nil and callers degrade gracefully: no cache, no rate
// limit, and a process-local submission guard.

import (
	"context"
	"crypto/tls"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client using environment variables.
// Supported variables are:
//   REDIS_URL – redis:// or rediss:// URL; takes precedence over the rest
//   REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//   REDIS_ADDR – host:port shorthand
//   REDIS_PASSWORD – optional password
//   REDIS_DB – database number (default 0)
//   REDIS_TLS – enable TLS when "true" or "1"
//   REDIS_TLS_INSECURE – skip certificate verification (self-signed dev setups)
// The returned client may be nil if a connection cannot be established.
func NewRedisClient() *redis.Client {
	opts, err := redisOptions()
	if err != nil {
		log.Printf("redis: %v; continuing without redis", err)
		return nil
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis: ping %s failed: %v; continuing without redis", opts.Addr, err)
		_ = client.Close()
		return nil
	}
	return client
}

func redisOptions() (*redis.Options, error) {
	if u := os.Getenv("REDIS_URL"); u != "" {
		return redis.ParseURL(u)
	}
	host := os.Getenv("REDIS_HOST")
	port := os.Getenv("REDIS_PORT")
	addr := os.Getenv("REDIS_ADDR")
	if host != "" && port != "" {
		addr = host + ":" + port
	}
	if addr == "" {
		addr = "localhost:6379"
	}
	dbNum := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if n, err := strconv.Atoi(dbStr); err == nil {
			dbNum = n
		}
	}
	var tlsConf *tls.Config
	if envBool("REDIS_TLS", false) {
		h, _, _ := strings.Cut(addr, ":")
		tlsConf = &tls.Config{
			ServerName:         h,
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: envBool("REDIS_TLS_INSECURE", false),
		}
	}
	return &redis.Options{
		Addr:      addr,
		Password:  os.Getenv("REDIS_PASSWORD"),
		DB:        dbNum,
		TLSConfig: tlsConf,
	}, nil
}

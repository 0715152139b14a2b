package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr string

	// DatabaseURL selects PostgreSQL-backed stores when set; in-memory
	// stores are used otherwise.
	DatabaseURL string

	// Redis configures the reference-data cache. Empty URL disables caching.
	Redis RedisConfig

	// BreakdownKey is the hex-encoded 256-bit key used to seal calculation
	// breakdowns at the storage boundary. Empty disables sealing (dev only).
	BreakdownKey string

	// AuditBuffer is the audit worker channel capacity.
	AuditBuffer int
}

// RedisConfig mirrors the go-redis client options we override.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ThresholdCacheTTL bounds staleness of cached median income thresholds.
// Reference data changes at most annually; an hour is generous.
var ThresholdCacheTTL = time.Hour

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CLEARFORM_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	auditBuffer := 256
	if v := os.Getenv("CLEARFORM_AUDIT_BUFFER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			auditBuffer = n
		}
	}

	return Server{
		Addr:         addr,
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		BreakdownKey: os.Getenv("CLEARFORM_BREAKDOWN_KEY"),
		AuditBuffer:  auditBuffer,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config 应用配置
type Config struct {
	Port      string
	DBDriver  string
	DBPath    string
	DSN       string // Postgres / Supabase connection string
	JWTSecret string

	CORSOrigins []string

	ReferenceCacheTTL  time.Duration // 0 = keep until invalidated
	POICacheTTL        time.Duration
	POICacheMaxEntries int

	RateLimit       int // write requests per window per client IP
	RateLimitWindow time.Duration

	LogLevel  string
	LogFormat string // json or console

	TracingEnabled     bool
	TracingServiceName string
}

// Load 加载配置
func Load() *Config {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	driver := strings.ToLower(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = DriverSQLite
		if dsn != "" {
			driver = DriverPostgres
		}
	}

	port := getEnv("PORT", ":8080")
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		port = ":" + port
	}

	return &Config{
		Port:      port,
		DBDriver:  driver,
		DBPath:    getEnv("DB_PATH", "./data/atlas.db"),
		DSN:       dsn,
		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),

		ReferenceCacheTTL:  getDuration("REFERENCE_CACHE_TTL", 0),
		POICacheTTL:        getDuration("POI_CACHE_TTL", 5*time.Minute),
		POICacheMaxEntries: getInt("POI_CACHE_MAX_ENTRIES", 1024),

		RateLimit:       getInt("RATE_LIMIT", 60),
		RateLimitWindow: getDuration("RATE_LIMIT_WINDOW", time.Minute),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		TracingEnabled:     strings.EqualFold(os.Getenv("TRACING_ENABLED"), "true"),
		TracingServiceName: getEnv("TRACING_SERVICE_NAME", "travel-atlas"),
	}
}

// Validate checks settings that would otherwise fail later at startup.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.ReferenceCacheTTL < 0 || c.POICacheTTL < 0 {
		return fmt.Errorf("cache TTLs must not be negative")
	}
	if c.RateLimit < 1 {
		return fmt.Errorf("RATE_LIMIT must be at least 1")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

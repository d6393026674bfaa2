package config

import (
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// DefaultGeoBoundaryURL is the Brazilian states GeoJSON used for the map.
const DefaultGeoBoundaryURL = "https://raw.githubusercontent.com/codeforamerica/click_that_hood/master/public/data/brazil-states.geojson"

// Config holds all configuration for the application.
type Config struct {
	AppEnv                string
	DBPath                string
	DBDriver              string
	RedisAddr             string
	RedisPassword         string
	GRPCPort              int
	GRPCReflectionEnabled bool
	HTTPAddr              string
	UpstreamBaseURL       string
	UpstreamTimeout       time.Duration
	UpstreamToken         string
	GeoBoundaryURL        string
	CacheTTL              time.Duration
}

// LoadFromEnv loads configuration from environment variables. Values that
// fail to parse fall back to their defaults.
func LoadFromEnv() *Config {
	return &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		DBPath:                getEnv("DB_PATH", "./data/triagedash.db"),
		DBDriver:              getEnv("DB_DRIVER", "sqlite3"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		GRPCPort:              getInt("GRPC_PORT", 50051),
		GRPCReflectionEnabled: getBool("GRPC_REFLECTION_ENABLED", false),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		UpstreamBaseURL:       getEnv("UPSTREAM_BASE_URL", "http://localhost:8000"),
		UpstreamTimeout:       getDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		UpstreamToken:         os.Getenv("UPSTREAM_TOKEN"),
		GeoBoundaryURL:        getEnv("GEO_BOUNDARY_URL", DefaultGeoBoundaryURL),
		CacheTTL:              getDuration("CACHE_TTL", 10*time.Minute),
	}
}

// CacheEnabled reports whether a redis address was configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

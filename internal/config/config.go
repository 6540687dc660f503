package config

import (
	"os"
	"strconv"
	"time"
)

// Gallery scope policies. Shared exposes every record to every authenticated
// user; per-user isolates records by owner.
const (
	ScopeShared  = "shared"
	ScopePerUser = "per-user"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port          string
	PostgresDSN   string
	MongoURI      string
	MongoDB       string
	RedisAddr     string
	RedisPassword string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	// MinioPublicURL is the externally reachable base URL used to build the
	// durable object URLs stored on image records.
	MinioPublicURL string

	InferenceURL string

	JWTSecret string
	TokenTTL  time.Duration

	GalleryScope string

	UpstreamTimeout time.Duration
	RetryAttempts   int
	RetryBaseDelay  time.Duration
	ListCacheTTL    time.Duration
}

func Load() *Config {
	return &Config{
		Port:          getenv("PORT", "8001"),
		PostgresDSN:   getenv("POSTGRES_DSN", ""),
		MongoURI:      getenv("MONGO_URI", ""),
		MongoDB:       getenv("MONGO_DB", "emotisense"),
		RedisAddr:     getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		MinioEndpoint:  getenv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "uploads"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",
		MinioPublicURL: getenv("MINIO_PUBLIC_URL", "http://localhost:9000"),

		InferenceURL: getenv("INFERENCE_URL", "http://ml-service:5001"),

		JWTSecret: getenv("JWT_SECRET", ""),
		TokenTTL:  getduration("TOKEN_TTL", 7*24*time.Hour),

		GalleryScope: getenv("GALLERY_SCOPE", ScopeShared),

		UpstreamTimeout: getduration("UPSTREAM_TIMEOUT", 30*time.Second),
		RetryAttempts:   getint("UPSTREAM_RETRY_ATTEMPTS", 3),
		RetryBaseDelay:  getduration("UPSTREAM_RETRY_BASE_DELAY", 500*time.Millisecond),
		ListCacheTTL:    getduration("LIST_CACHE_TTL", 30*time.Second),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

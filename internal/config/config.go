package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Cache      CacheConfig
	Auth       AuthConfig
	Push       PushConfig
	Cloudinary CloudinaryConfig
	Sweep      SweepConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	Environment     string
	CORSOrigin      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	SlowQueryThreshold time.Duration
	MigrationsPath     string
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Provider   string // "memory" or "redis"
	RedisURL   string
	DefaultTTL time.Duration
	MaxKeys    int
}

// AuthConfig holds JWT configuration for the user-scoped routes
type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
}

// PushConfig holds push provider configuration. Providers with an empty
// credential are treated as disabled; Order controls dispatch priority.
type PushConfig struct {
	Order          []string // e.g. fcm,expo,onesignal
	RequestTimeout time.Duration
	MaxRetries     uint64

	FCMServerKey    string
	FCMEndpoint     string
	ExpoEndpoint    string
	ExpoAccessToken string
	OneSignalAppID  string
	OneSignalAPIKey string
	OneSignalURL    string
}

// CloudinaryConfig holds badge icon delivery configuration
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// SweepConfig holds defaults for the tenure sweep endpoint
type SweepConfig struct {
	DefaultBatchSize int
	MaxBatchSize     int
}

// Load reads configuration from the environment, with .env support for
// local development.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	env := getEnv("GO_ENV", "development")

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnv("PORT", "9000"),
			Environment:     env,
			CORSOrigin:      getEnv("CORS_ORIGIN", "*"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			GracefulTimeout: getDurationEnv("SERVER_GRACEFUL_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:                os.Getenv("DATABASE_URL"),
			MaxOpenConns:       getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       getIntEnv("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime:    getDurationEnv("DB_CONN_MAX_LIFETIME", 10*time.Minute),
			ConnMaxIdleTime:    getDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
			SlowQueryThreshold: getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 100*time.Millisecond),
			MigrationsPath:     getEnv("DB_MIGRATIONS_PATH", "./migrations"),
		},
		Cache: CacheConfig{
			Provider:   getEnv("CACHE_PROVIDER", "memory"),
			RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379/0"),
			DefaultTTL: getDurationEnv("CACHE_DEFAULT_TTL", 5*time.Minute),
			MaxKeys:    getIntEnv("CACHE_MAX_KEYS", 10000),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			JWTIssuer: getEnv("JWT_ISSUER", "merithub"),
		},
		Push: PushConfig{
			Order:          splitList(getEnv("PUSH_PROVIDER_ORDER", "fcm,expo,onesignal")),
			RequestTimeout: getDurationEnv("PUSH_REQUEST_TIMEOUT", 10*time.Second),
			MaxRetries:     uint64(getIntEnv("PUSH_MAX_RETRIES", 2)),

			FCMServerKey:    os.Getenv("FCM_SERVER_KEY"),
			FCMEndpoint:     getEnv("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send"),
			ExpoEndpoint:    getEnv("EXPO_PUSH_ENDPOINT", "https://exp.host/--/api/v2/push/send"),
			ExpoAccessToken: os.Getenv("EXPO_ACCESS_TOKEN"),
			OneSignalAppID:  os.Getenv("ONESIGNAL_APP_ID"),
			OneSignalAPIKey: os.Getenv("ONESIGNAL_API_KEY"),
			OneSignalURL:    getEnv("ONESIGNAL_ENDPOINT", "https://onesignal.com/api/v1/notifications"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		},
		Sweep: SweepConfig{
			DefaultBatchSize: getIntEnv("SWEEP_DEFAULT_BATCH_SIZE", 100),
			MaxBatchSize:     getIntEnv("SWEEP_MAX_BATCH_SIZE", 1000),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that would otherwise surface as confusing
// runtime failures.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS cannot exceed DB_MAX_OPEN_CONNS")
	}
	if c.IsProduction() && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.Sweep.DefaultBatchSize <= 0 || c.Sweep.MaxBatchSize < c.Sweep.DefaultBatchSize {
		return fmt.Errorf("invalid sweep batch size configuration")
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

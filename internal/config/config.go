package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseDriver string
	DatabaseURL    string
	RedisURL       string
	ServerPort     string
	Environment    string

	// Sessions
	SessionTTL        time.Duration
	SessionCookieName string
	SessionSliding    bool
	SessionCacheSize  int

	// Bootstrap admin account
	AdminUsername string
	AdminEmail    string
	AdminPassword string

	// Audit journal
	AuditLogPath   string
	AuditRetention time.Duration

	CORSOrigins []string

	// Rate limiting
	RateLimitMaxRequests int
	RateLimitWindow      time.Duration
	RateLimitBlockTime   time.Duration
}

func Load() *Config {
	// Missing .env is fine, containers pass the environment directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DatabaseDriver: getEnv("DB_DRIVER", "sqlite"),
		DatabaseURL:    getEnv("DATABASE_URL", "blog.db"),
		RedisURL:       os.Getenv("REDIS_URL"),
		ServerPort:     getEnv("SERVER_PORT", ":3000"),
		Environment:    getEnv("ENVIRONMENT", "development"),

		SessionTTL:        getEnvAsDuration("SESSION_TTL", "24h"),
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "session_id"),
		SessionSliding:    getEnvAsBool("SESSION_SLIDING", false),
		SessionCacheSize:  getEnvAsInt("SESSION_CACHE_SIZE", 10000),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@localhost"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),

		AuditLogPath:   getEnv("AUDIT_LOG_PATH", "data/audit.log"),
		AuditRetention: getEnvAsDuration("AUDIT_RETENTION", "720h"),

		CORSOrigins: getEnvAsList("CORS_ORIGINS", "http://localhost:3000"),

		RateLimitMaxRequests: getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 20),
		RateLimitWindow:      getEnvAsDuration("RATE_LIMIT_WINDOW", "1m"),
		RateLimitBlockTime:   getEnvAsDuration("RATE_LIMIT_BLOCK_TIME", "5m"),
	}

	if !strings.HasPrefix(cfg.ServerPort, ":") {
		cfg.ServerPort = ":" + cfg.ServerPort
	}

	return cfg
}

// IsProduction reports whether secure-cookie behaviour should be enabled
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// getEnvAsInt retrieves environment variable as int with default value
func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid %s value, using default: %d", key, defaultVal)
		return defaultVal
	}
	return val
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Invalid %s value, using default: %t", key, defaultVal)
		return defaultVal
	}
	return val
}

// getEnvAsDuration retrieves environment variable as duration with default value
func getEnvAsDuration(key string, defaultVal string) time.Duration {
	valStr := os.Getenv(key)
	if valStr == "" {
		valStr = defaultVal
	}
	duration, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Invalid %s value, using default: %s", key, defaultVal)
		duration, _ = time.ParseDuration(defaultVal)
	}
	return duration
}

func getEnvAsList(key string, defaultVal string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultVal), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

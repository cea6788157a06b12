package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime knob. XPPerCredit is the single source of truth
// for the XP-to-wallet conversion; it is applied only at verification time.
type Config struct {
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	HTTPPort      string
	JWTSecret     string
	SessionTTL    time.Duration
	UploadDir     string

	// XPPerCredit XP convert to one wallet currency unit
	XPPerCredit int
	// DefaultXPAward is granted when an admin verifies without naming an award
	DefaultXPAward int
}

// Load reads configuration from the environment, with .env support
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGO_DB", "cyberqa"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:       getEnv("PORT", "5000"),
		JWTSecret:      getEnv("JWT_SECRET", "change-me-in-production"),
		SessionTTL:     getEnvDuration("SESSION_TTL", 24*time.Hour),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		XPPerCredit:    getEnvInt("XP_PER_CREDIT", 10),
		DefaultXPAward: getEnvInt("DEFAULT_XP_AWARD", 10),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			return d
		}
	}
	return defaultVal
}

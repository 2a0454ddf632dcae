package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/swimpace/backend/internal/pace"
)

type Config struct {
	// Environment
	Environment string

	// Database (optional; race history is disabled when empty)
	DatabaseURL    string
	MigrateOnStart bool

	// Redis (optional; settings events stay local when empty)
	RedisURL string

	// Server
	Port        string
	FrontendURL string
	PublicURL   string

	// Race clock
	ClockFPS int

	// Pace defaults for a fresh session
	Pace pace.Config

	// Security
	JWTSecret             string
	OperatorPINHash       string
	TokenTTLMinutes       int
	LoginRateLimitSeconds int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	defaults := pace.Defaults()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnv("MIGRATE_ON_START", "false") == "true",

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		PublicURL:   getEnv("PUBLIC_URL", "http://localhost:5173"),

		// Race clock
		ClockFPS: getEnvInt("CLOCK_FPS", 30),

		// Pace defaults
		Pace: pace.Config{
			RaceDistance:   getEnvInt("RACE_DISTANCE", defaults.RaceDistance),
			QualifyingTime: getEnvFloat("QUALIFYING_TIME", defaults.QualifyingTime),
			PoolLength:     getEnvFloat("POOL_LENGTH", defaults.PoolLength),
			BarWidth:       getEnvFloat("PACE_BAR_WIDTH", defaults.BarWidth),
			Units:          getEnv("POOL_UNITS", defaults.Units),
			BarColor:       getEnv("PACE_BAR_COLOR", defaults.BarColor),
			Caption:        getEnv("PACE_CAPTION", defaults.Caption),
			CaptionColor:   getEnv("PACE_CAPTION_COLOR", defaults.CaptionColor),
		},

		// Security
		JWTSecret:             getEnv("JWT_SECRET", "change-me-in-production"),
		OperatorPINHash:       getEnv("OPERATOR_PIN_HASH", ""),
		TokenTTLMinutes:       getEnvInt("TOKEN_TTL_MINUTES", 12*60),
		LoginRateLimitSeconds: getEnvInt("LOGIN_RATE_LIMIT_SECONDS", 5),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const EnvTest = "test"

type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Simulation SimulationConfig
	RateLimit  string
	Log        LogConfig
}

type ServerConfig struct {
	Port       string
	Env        string
	CORSOrigin string
}

type DBConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN prefers DATABASE_URL and otherwise assembles a keyword DSN.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
}

type SimulationConfig struct {
	StatusDelay time.Duration
}

type LogConfig struct {
	Level  string
	Pretty bool
}

func LoadConfig() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	redisEnabled, err := strconv.ParseBool(getEnv("REDIS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid REDIS_ENABLED: %w", err)
	}
	tokenTTL, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	statusDelay, err := time.ParseDuration(getEnv("ORDER_STATUS_DELAY", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid ORDER_STATUS_DELAY: %w", err)
	}
	logPretty, err := strconv.ParseBool(getEnv("LOG_PRETTY", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid LOG_PRETTY: %w", err)
	}

	env := getEnv("APP_ENV", "development")
	if env == EnvTest {
		statusDelay = 0
	}

	return Config{
		Server: ServerConfig{
			Port:       getEnv("PORT", "5000"),
			Env:        env,
			CORSOrigin: getEnv("CORS_ORIGIN", "*"),
		},
		DB: DBConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Name:     getEnv("POSTGRES_DB", "orderflow"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  redisEnabled,
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "orderflow-dev-secret"),
			TokenTTL:      tokenTTL,
			AdminEmail:    getEnv("ADMIN_EMAIL", "admin@orderflow.com"),
			AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		},
		Simulation: SimulationConfig{
			StatusDelay: statusDelay,
		},
		RateLimit: getEnv("RATE_LIMIT", "60-M"),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: logPretty,
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	JWTSecret     string
	JWTTTL        time.Duration
	ShareTokenTTL time.Duration

	ServerPort   string
	UploadDir    string
	MaxUploadMB  int
	LogMode      string
	RedisURL     string
	PortfolioTTL time.Duration
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	cfg := &Config{
		DBDriver:   getEnv("DB_DRIVER", "sqlite"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "progress_hub"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "data.db"),

		JWTSecret:     getEnv("JWT_SECRET", "dev-secret"),
		JWTTTL:        getEnvDuration("JWT_TTL", 7*24*time.Hour),
		ShareTokenTTL: getEnvDuration("SHARE_TOKEN_TTL", 30*24*time.Hour),

		ServerPort:   getEnv("SERVER_PORT", "4000"),
		UploadDir:    getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadMB:  getEnvInt("MAX_UPLOAD_MB", 10),
		LogMode:      getEnv("LOG_MODE", "development"),
		RedisURL:     getEnv("REDIS_URL", ""),
		PortfolioTTL: getEnvDuration("PORTFOLIO_CACHE_TTL", 5*time.Minute),
	}

	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}

	return cfg, nil
}

// DSN renders the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

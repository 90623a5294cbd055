package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port        string
	Env         string
	MetricsAddr string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Logging
	LogLevel  string
	LogFormat string

	// Workspace
	Timezone         string
	QRValidityMonths int
	ScanRateLimit    int
	SuperAdminEmail  string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		Env:              getEnvOrDefault("ENV", "development"),
		MetricsAddr:      getEnvOrDefault("METRICS_ADDR", ":9090"),
		DatabaseURL:      mustGetEnv("DATABASE_URL"),
		RedisURL:         mustGetEnv("REDIS_URL"),
		JWTSecret:        mustGetEnv("JWT_SECRET"),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        getEnvOrDefault("LOG_FORMAT", "json"),
		Timezone:         getEnvOrDefault("TIMEZONE", "UTC"),
		QRValidityMonths: getEnvAsIntOrDefault("QR_VALIDITY_MONTHS", 1),
		ScanRateLimit:    getEnvAsIntOrDefault("SCAN_RATE_LIMIT", 30),
		SuperAdminEmail:  getEnvOrDefault("SUPERADMIN_EMAIL", "admin@techie.local"),
		FrontendURL:      getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

// LoadDatabaseURL reads only what the migrate command needs.
func LoadDatabaseURL() string {
	godotenv.Load()
	return mustGetEnv("DATABASE_URL")
}

// LoadJWTSecret reads only what the token command needs.
func LoadJWTSecret() string {
	godotenv.Load()
	return mustGetEnv("JWT_SECRET")
}

// Location resolves Timezone. Day, week and month boundaries are computed in it.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

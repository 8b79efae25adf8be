package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerPort    string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	JWTSecret     string
	SweepInterval time.Duration
}

func Load() *Config {
	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "flare"),
		DBPassword:    getEnv("DB_PASSWORD", "flare_dev_password"),
		DBName:        getEnv("DB_NAME", "flare"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
		SweepInterval: getEnvSeconds("SWEEP_INTERVAL", 60),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	if val, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(fallback) * time.Second
}

package config

import (
	"os"
	"strconv"
)

type Config struct {
	// HTTP server
	Port        string
	FrontendURL string

	// Storage backend: "postgres" (DATABASE_URL) or "memory" (dev/test)
	DataBackend string
	DatabaseURL string

	// Currency presentation: fixed rate, minor units per major unit of the
	// base currency against USD.
	BaseCurrency string
	ExchangeRate float64
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:3000"),
		DataBackend:  getEnv("DATA_BACKEND", "postgres"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		BaseCurrency: getEnv("BASE_CURRENCY", "NIO"),
		ExchangeRate: getEnvFloat("EXCHANGE_RATE", 36.65),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// SPDX-License-Identifier: AGPL-3.0-only

// Package config loads service configuration from the environment, with
// optional .env support for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort           = "8080"
	defaultSSLMode        = "disable"
	defaultWorkerInterval = 5 * time.Minute
	defaultProviderRPS    = 5
)

type AppConfig struct {
	Port  string
	Debug bool

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RapidAPIKey  string
	RapidAPIHost string
	ProviderRPS  int

	// GenAIServiceURL is optional; empty disables lead refinement.
	GenAIServiceURL string

	WorkerInterval time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{
		Port:            getEnv("PORT", defaultPort),
		Debug:           os.Getenv("APP_DEBUG") == "true",
		DBHost:          getEnv("POSTGRES_HOST", "localhost"),
		DBPort:          getEnv("POSTGRES_PORT", "5432"),
		DBUser:          os.Getenv("POSTGRES_USER"),
		DBPassword:      os.Getenv("POSTGRES_PASSWORD"),
		DBName:          os.Getenv("POSTGRES_DB"),
		DBSSLMode:       getEnv("POSTGRES_SSLMODE", defaultSSLMode),
		RapidAPIKey:     os.Getenv("RAPIDAPI_KEY"),
		RapidAPIHost:    os.Getenv("RAPIDAPI_HOST"),
		ProviderRPS:     defaultProviderRPS,
		GenAIServiceURL: os.Getenv("GENAI_SERVICE_URL"),
		WorkerInterval:  defaultWorkerInterval,
	}

	if cfg.DBUser == "" || cfg.DBPassword == "" || cfg.DBName == "" {
		return nil, fmt.Errorf("POSTGRES_USER, POSTGRES_PASSWORD and POSTGRES_DB must be set")
	}
	if cfg.RapidAPIKey == "" || cfg.RapidAPIHost == "" {
		return nil, fmt.Errorf("RAPIDAPI_KEY and RAPIDAPI_HOST must be set")
	}

	if v := os.Getenv("PROVIDER_RPS"); v != "" {
		rps, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PROVIDER_RPS %q: %w", v, err)
		}
		cfg.ProviderRPS = rps
	}

	if v := os.Getenv("WORKER_INTERVAL"); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid WORKER_INTERVAL %q: %w", v, err)
		}
		cfg.WorkerInterval = interval
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

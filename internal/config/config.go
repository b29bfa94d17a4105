package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	RiotAPIKey string

	// Platform host for summoner/league endpoints (e.g. euw1) and regional
	// routing host for account/match endpoints (e.g. europe).
	Platform string
	Region   string

	DBPath     string
	ServerPort string
	LogLevel   string

	PollInterval    time.Duration
	PollConcurrency int
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		RiotAPIKey:      getEnv("RIOT_API_KEY", ""),
		Platform:        getEnv("RIOT_PLATFORM", "euw1"),
		Region:          getEnv("RIOT_REGION", "europe"),
		DBPath:          getEnv("DB_PATH", "climb.db"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		PollInterval:    getEnvDuration("POLL_INTERVAL", time.Minute),
		PollConcurrency: getEnvInt("POLL_CONCURRENCY", 4),
	}

	if cfg.RiotAPIKey == "" {
		return nil, fmt.Errorf("RIOT_API_KEY is required")
	}
	if cfg.PollConcurrency < 1 {
		return nil, fmt.Errorf("POLL_CONCURRENCY must be at least 1")
	}

	logger.Info().
		Str("platform", cfg.Platform).
		Str("region", cfg.Region).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Dur("poll_interval", cfg.PollInterval).
		Int("poll_concurrency", cfg.PollConcurrency).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port      int
	LogLevel  string
	LogFormat string

	// DatabaseURL selects PostgreSQL persistence. Empty runs the server
	// on the in-memory store.
	DatabaseURL string

	// LevelsDir overrides the embedded level files with a directory of
	// *.spawner.yaml tuning files.
	LevelsDir string

	// SpawnSeed pins the base RNG seed for every session. Zero seeds
	// each session from the clock.
	SpawnSeed int64

	LeaderboardLimit int
}

func Load() *Config {
	return &Config{
		Port:             getEnvInt("PORT", 8080),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		LevelsDir:        getEnv("LEVELS_DIR", ""),
		SpawnSeed:        getEnvInt64("SPAWN_SEED", 0),
		LeaderboardLimit: getEnvInt("LEADERBOARD_LIMIT", 10),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

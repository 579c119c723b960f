package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const appName = "movie-ticket-cli"

type Config struct {
	// DataDir holds the catalog, ledger and history files.
	DataDir string
	LogFile string
	// LogLevel is parsed by zap; empty keeps the environment default.
	LogLevel string
	Env      string
	// MaxSeatAttempts bounds seat prompts per ticket. Zero means unbounded.
	MaxSeatAttempts int
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := strings.TrimSpace(os.Getenv("MOVIE_TICKETS_DATA_DIR"))
	if dataDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		dataDir = filepath.Join(dir, appName)
	}

	cfg := &Config{
		DataDir:         dataDir,
		LogLevel:        getEnv("LOG_LEVEL", ""),
		Env:             getEnv("APP_ENV", "development"),
		MaxSeatAttempts: getIntEnv("MOVIE_TICKETS_MAX_SEAT_ATTEMPTS", 0),
	}
	cfg.LogFile = getEnv("MOVIE_TICKETS_LOG_FILE", filepath.Join(dataDir, appName+".log"))
	if cfg.MaxSeatAttempts < 0 {
		cfg.MaxSeatAttempts = 0
	}
	return cfg, nil
}

// WithDataDir points the config at another data directory. The log file
// follows unless it was set explicitly.
func (c *Config) WithDataDir(dir string) *Config {
	next := *c
	if next.LogFile == filepath.Join(c.DataDir, appName+".log") {
		next.LogFile = filepath.Join(dir, appName+".log")
	}
	next.DataDir = dir
	return &next
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

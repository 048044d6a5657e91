package config

import (
	"os"
	"runtime"
	"strconv"
	"time"

	"lol-encounters/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath           string
	ServerPort       string
	LogLevel         string
	RiotAPIKey       string
	LockfilePath     string
	PollInterval     time.Duration
	ImportMatchCount int
	NATSURL          string
	NATSPrefix       string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:           getEnv("DB_PATH", "encounters.db"),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		RiotAPIKey:       getEnv("RIOT_API_KEY", ""),
		LockfilePath:     getEnv("LCU_LOCKFILE_PATH", defaultLockfilePath()),
		PollInterval:     getEnvDuration("POLL_INTERVAL", constants.DefaultPollInterval),
		ImportMatchCount: getEnvInt("IMPORT_MATCH_COUNT", 100),
		NATSURL:          getEnv("NATS_URL", ""),
		NATSPrefix:       getEnv("NATS_SUBJECT_PREFIX", "encounters"),
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = constants.DefaultPollInterval
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("lockfile_path", cfg.LockfilePath).
		Dur("poll_interval", cfg.PollInterval).
		Int("import_match_count", cfg.ImportMatchCount).
		Bool("riot_api_key_set", cfg.RiotAPIKey != "").
		Bool("nats_enabled", cfg.NATSURL != "").
		Msg("configuration loaded")

	return cfg, nil
}

func defaultLockfilePath() string {
	switch runtime.GOOS {
	case "darwin":
		return "/Applications/League of Legends.app/Contents/LoL/lockfile"
	default:
		return `C:\Riot Games\League of Legends\lockfile`
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

var Module = fx.Provide(Load)

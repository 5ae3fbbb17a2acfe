package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/jwebster45206/stealth-engine/pkg/behavior"
	"github.com/jwebster45206/stealth-engine/pkg/perception"
)

type Config struct {
	Environment string
	LogLevel    slog.Level
	LogFile     string // Empty logs to stdout
	DataDir     string
	RedisURL    string // Empty disables the event queue and broadcaster

	TimeScale float64 // Game minutes per real second
	TickMs    int

	ReactionThreshold float64
	SneakMultiplier   float64
	AlertnessGain     float64 // Alertness per second at full detection
}

// Load reads configuration from the environment. Unparsable numbers are an
// error rather than silently falling back to defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LogFile:     getEnv("LOG_FILE", ""),
		DataDir:     getEnv("DATA_DIR", "./data"),
		RedisURL:    getEnv("REDIS_URL", ""),
	}

	var err error
	if cfg.TimeScale, err = getFloat("TIME_SCALE", 1); err != nil {
		return nil, err
	}
	if cfg.TickMs, err = getInt("TICK_MS", 100); err != nil {
		return nil, err
	}
	if cfg.ReactionThreshold, err = getFloat("REACTION_THRESHOLD", perception.DefaultReactionThreshold); err != nil {
		return nil, err
	}
	if cfg.SneakMultiplier, err = getFloat("SNEAK_MULTIPLIER", perception.DefaultSneakMultiplier); err != nil {
		return nil, err
	}
	if cfg.AlertnessGain, err = getFloat("ALERTNESS_GAIN", behavior.DefaultAlertnessGainPerSecond); err != nil {
		return nil, err
	}

	if cfg.TimeScale <= 0 {
		return nil, fmt.Errorf("TIME_SCALE must be positive, got %v", cfg.TimeScale)
	}
	if cfg.TickMs <= 0 {
		return nil, fmt.Errorf("TICK_MS must be positive, got %d", cfg.TickMs)
	}
	return cfg, nil
}

// Machine returns the behavior tuning described by the configuration.
func (c *Config) Machine() behavior.Machine {
	return behavior.Machine{
		Tuning: perception.Tuning{
			ReactionThreshold: c.ReactionThreshold,
			SneakMultiplier:   c.SneakMultiplier,
		},
		AlertnessGainPerSecond: c.AlertnessGain,
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

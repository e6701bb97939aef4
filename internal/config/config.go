package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds user preferences loaded from ~/.config/tempo/config.yaml.
type Config struct {
	DBPath     string `yaml:"db_path"`
	WeekEndsOn string `yaml:"week_ends_on"` // "sunday" or "saturday"

	LogLevel   string `yaml:"log_level"` // DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file"`
	LogConsole bool   `yaml:"log_console"`
}

// DefaultConfig returns default settings, with env overrides applied.
func DefaultConfig() *Config {
	cfgDir, _ := os.UserConfigDir()
	dbPath := ""
	logPath := ""
	if cfgDir != "" {
		dbPath = filepath.Join(cfgDir, "tempo", "tempo.db")
		logPath = filepath.Join(cfgDir, "tempo", "tempo.log")
	}

	return &Config{
		DBPath:     getEnv("TEMPO_DB", dbPath),
		WeekEndsOn: "sunday",
		LogLevel:   getEnv("TEMPO_LOG_LEVEL", "INFO"),
		LogFile:    getEnv("TEMPO_LOG_FILE", logPath),
		LogConsole: getEnv("TEMPO_LOG_CONSOLE", "false") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Load reads the config file, falling back to defaults when it does not exist.
func Load() (*Config, error) {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(cfgDir, "tempo", "config.yaml"))
}

// LoadFrom reads a config file from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.WeekEndsOn != "sunday" && cfg.WeekEndsOn != "saturday" {
		cfg.WeekEndsOn = "sunday"
	}
	return cfg, nil
}

// Save writes the config back to its default location.
func (c *Config) Save() error {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return err
	}
	path := filepath.Join(cfgDir, "tempo", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

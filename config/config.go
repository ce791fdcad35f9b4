package config

import (
	"errors"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	AppEnv           string
	StorePath        string
	LogLevel         string
	DBLogLevel       string
	DBBusyTimeoutMs  int
	AutosaveInterval time.Duration
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intVal
		}
		log.Printf("Invalid integer value for %s, defaulting to %d", key, defaultValue)
	}
	return defaultValue
}

// DefaultStorePath is Notes.sqlite in the user's config directory, or in the
// working directory when there is none.
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "Notes.sqlite"
	}
	return filepath.Join(dir, "notes", "Notes.sqlite")
}

// FileConfig is the optional TOML settings file. Unset keys keep the
// built-in defaults.
type FileConfig struct {
	Store struct {
		Path          string `toml:"path"`
		BusyTimeoutMs int    `toml:"busy_timeout_ms"`
	} `toml:"store"`
	Logging struct {
		Level   string `toml:"level"`
		DBLevel string `toml:"db_level"`
	} `toml:"logging"`
	Autosave struct {
		Seconds int `toml:"seconds"`
	} `toml:"autosave"`
}

func defaultFileConfig() FileConfig {
	var fc FileConfig
	fc.Store.Path = DefaultStorePath()
	fc.Store.BusyTimeoutMs = 5000
	fc.Logging.Level = "info"
	fc.Logging.DBLevel = "warn"
	return fc
}

// DefaultConfigFile is config.toml next to the default store.
func DefaultConfigFile() string {
	return filepath.Join(filepath.Dir(DefaultStorePath()), "config.toml")
}

// ReadFile overlays the TOML file at path onto the defaults. A missing or
// empty file is not an error.
func ReadFile(path string) (FileConfig, error) {
	fc := defaultFileConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fc, nil
		}
		return fc, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return fc, nil
	}
	if err := toml.Unmarshal(data, &fc); err != nil {
		return defaultFileConfig(), err
	}
	return fc, nil
}

// Load builds the configuration. Precedence, lowest first: built-in
// defaults, the TOML file named by NOTES_CONFIG (or DefaultConfigFile), a
// .env file in the working directory, the process environment.
func Load() Config {
	_ = godotenv.Load()

	configFile := getEnv("NOTES_CONFIG", DefaultConfigFile())
	fc, err := ReadFile(configFile)
	if err != nil {
		log.Printf("Ignoring config file %s: %v", configFile, err)
	}

	return Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		StorePath:        getEnv("NOTES_STORE_PATH", fc.Store.Path),
		LogLevel:         getEnv("NOTES_LOG_LEVEL", fc.Logging.Level),
		DBLogLevel:       getEnv("NOTES_DB_LOG_LEVEL", fc.Logging.DBLevel),
		DBBusyTimeoutMs:  getEnvAsInt("NOTES_DB_BUSY_TIMEOUT_MS", fc.Store.BusyTimeoutMs),
		AutosaveInterval: time.Duration(getEnvAsInt("NOTES_AUTOSAVE_SECONDS", fc.Autosave.Seconds)) * time.Second,
	}
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("NOTES_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	for _, key := range []string{"APP_ENV", "NOTES_STORE_PATH", "NOTES_LOG_LEVEL", "NOTES_DB_LOG_LEVEL", "NOTES_DB_BUSY_TIMEOUT_MS", "NOTES_AUTOSAVE_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, DefaultStorePath(), cfg.StorePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "warn", cfg.DBLogLevel)
	assert.Equal(t, 5000, cfg.DBBusyTimeoutMs)
	assert.Equal(t, time.Duration(0), cfg.AutosaveInterval)
}

func TestLoad_FromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("NOTES_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("NOTES_STORE_PATH", "/tmp/notes/test.sqlite")
	t.Setenv("NOTES_DB_BUSY_TIMEOUT_MS", "250")
	t.Setenv("NOTES_AUTOSAVE_SECONDS", "30")
	t.Setenv("NOTES_LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, "/tmp/notes/test.sqlite", cfg.StorePath)
	assert.Equal(t, 250, cfg.DBBusyTimeoutMs)
	assert.Equal(t, 30*time.Second, cfg.AutosaveInterval)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_InvalidIntegerFallsBack(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("NOTES_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("NOTES_DB_BUSY_TIMEOUT_MS", "soon")

	cfg := Load()
	assert.Equal(t, 5000, cfg.DBBusyTimeoutMs)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("NOTES_CONFIG", filepath.Join(dir, "missing.toml"))
	t.Setenv("NOTES_STORE_PATH", "")
	os.Unsetenv("NOTES_STORE_PATH")

	env := "NOTES_STORE_PATH=" + filepath.Join(dir, "from-dotenv.sqlite") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))

	cfg := Load()
	assert.Equal(t, filepath.Join(dir, "from-dotenv.sqlite"), cfg.StorePath)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	for _, key := range []string{"NOTES_STORE_PATH", "NOTES_LOG_LEVEL", "NOTES_AUTOSAVE_SECONDS", "NOTES_DB_BUSY_TIMEOUT_MS"} {
		t.Setenv(key, "")
	}
	t.Setenv("NOTES_LOG_LEVEL", "error")

	file := filepath.Join(dir, "config.toml")
	t.Setenv("NOTES_CONFIG", file)
	require.NoError(t, os.WriteFile(file, []byte(`
[store]
path = "/srv/notes/Notes.sqlite"

[logging]
level = "debug"

[autosave]
seconds = 15
`), 0o600))

	cfg := Load()
	assert.Equal(t, "/srv/notes/Notes.sqlite", cfg.StorePath)
	assert.Equal(t, 15*time.Second, cfg.AutosaveInterval)
	assert.Equal(t, 5000, cfg.DBBusyTimeoutMs)
	// The environment wins over the file.
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	fc, err := ReadFile(filepath.Join(dir, "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, defaultFileConfig(), fc)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[store\npath = 1"), 0o600))
	_, err = ReadFile(bad)
	assert.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, Config{}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, Config{LogLevel: "WARN"}.SlogLevel())
	assert.Equal(t, slog.LevelError, Config{LogLevel: "error"}.SlogLevel())
}

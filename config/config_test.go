package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FITLOG_SESSION_SECRET", "s3cret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:8080", cfg.Addr)
	require.Equal(t, "sqlite", cfg.DBDriver)
	require.Equal(t, 3600, cfg.SessionMaxAge)
	require.True(t, cfg.SecureCookies)
	require.Equal(t, "en-US", cfg.DefaultLocale)
	require.Equal(t, 5*time.Second, cfg.ShutdownWait)
	require.Empty(t, cfg.LogFile)
	require.False(t, cfg.LogStacks)
}

func TestLoadLogSettings(t *testing.T) {
	t.Setenv("FITLOG_SESSION_SECRET", "s3cret")
	t.Setenv("FITLOG_LOG_FILE", "/var/log/fitlog.log")
	t.Setenv("FITLOG_LOG_STACKS", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "/var/log/fitlog.log", cfg.LogFile)
	require.True(t, cfg.LogStacks)
}

func TestLoadDotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("FITLOG_SESSION_SECRET=fromfile\nFITLOG_ADMIN_TOKEN=tok\n"), 0o600))
	t.Setenv("FITLOG_ADMIN_TOKEN", "fromenv")
	// godotenv sets variables process-wide; clear what the file introduces.
	t.Cleanup(func() { os.Unsetenv("FITLOG_SESSION_SECRET") })

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "fromfile", cfg.SessionSecret)
	require.Equal(t, "fromenv", cfg.AdminToken)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("FITLOG_SESSION_SECRET", "")
	os.Unsetenv("FITLOG_SESSION_SECRET")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse env:")
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("FITLOG_SESSION_SECRET", "s3cret")
	t.Setenv("FITLOG_DB_DRIVER", "postgres")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.ErrorContains(t, err, "unsupported db driver")
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadWithEnv("", "")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data/leave.db", cfg.Database.Path)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.False(t, cfg.Lark.Enabled)
	assert.Equal(t, "open_id", cfg.Lark.ReceiveIDType)
	assert.Equal(t, "en", cfg.Notification.Locale)
	assert.True(t, cfg.Notification.Async)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, 20.0, cfg.Server.RateLimit)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  port: 9090
  read_timeout: 5s
database:
  path: /tmp/leave-test.db
notification:
  locale: ar
  async: false
logger:
  format: console
`)

	cfg, err := LoadWithEnv(path, "")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "/tmp/leave-test.db", cfg.Database.Path)
	assert.Equal(t, "ar", cfg.Notification.Locale)
	assert.False(t, cfg.Notification.Async)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := LoadWithEnv(filepath.Join(t.TempDir(), "nope.yaml"), "")
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LARK_ENABLED", "true")
	t.Setenv("LARK_APP_ID", "cli_app")
	t.Setenv("LARK_APP_SECRET", "secret")
	t.Setenv("DATABASE_PATH", "/var/lib/leave.db")

	cfg, err := LoadWithEnv("", "")
	require.NoError(t, err)

	assert.True(t, cfg.Lark.Enabled)
	assert.Equal(t, "cli_app", cfg.Lark.AppID)
	assert.Equal(t, "secret", cfg.Lark.AppSecret)
	assert.Equal(t, "/var/lib/leave.db", cfg.Database.Path)
}

func TestLoad_DotEnvFile(t *testing.T) {
	envFile := writeFile(t, ".env", "LOG_LEVEL=debug\n")
	t.Cleanup(func() { os.Unsetenv("LOG_LEVEL") })

	cfg, err := LoadWithEnv("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoad_MissingDotEnvIsIgnored(t *testing.T) {
	_, err := LoadWithEnv("", filepath.Join(t.TempDir(), ".env"))
	assert.NoError(t, err)
}

func TestLoad_LarkEnabledWithoutCredentials(t *testing.T) {
	path := writeFile(t, "config.yaml", "lark:\n  enabled: true\n")

	_, err := LoadWithEnv(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lark.app_id")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:       ServerConfig{Port: 8080},
			Database:     DatabaseConfig{Path: "x.db"},
			Notification: NotificationConfig{Locale: "en"},
			Logger:       LoggerConfig{Format: "json"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"no database path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"no locale", func(c *Config) { c.Notification.Locale = "" }, "notification.locale"},
		{"lark missing secret", func(c *Config) {
			c.Lark = LarkConfig{Enabled: true, AppID: "id"}
		}, "lark.app_secret"},
		{"lark disabled needs nothing", func(c *Config) { c.Lark = LarkConfig{} }, ""},
		{"bad log format", func(c *Config) { c.Logger.Format = "xml" }, "logger.format"},
		{"negative rate limit", func(c *Config) { c.Server.RateLimit = -1 }, "server.rate_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestToContainerConfig(t *testing.T) {
	cfg, err := LoadWithEnv("", "")
	require.NoError(t, err)

	cc := cfg.ToContainerConfig()
	assert.Equal(t, cfg.Database.Path, cc.Database.Path)
	assert.Equal(t, cfg.Lark.ReceiveIDType, cc.Lark.ReceiveIDType)
	assert.Equal(t, cfg.Notification.Async, cc.Notification.Async)
	assert.NoError(t, cc.Validate())
}

// Package container provides dependency injection and lifecycle management
// for the leave approval service.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Lark API configuration
	Lark LarkConfig

	// Notification delivery configuration
	Notification NotificationConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// LarkConfig holds Lark API settings.
type LarkConfig struct {
	// Enabled switches delivery from the log sink to Lark messages
	Enabled bool

	AppID     string
	AppSecret string

	// ReceiveIDType is how Lark reads a notification address
	ReceiveIDType string

	// APITimeout is the timeout for API calls
	APITimeout time.Duration
}

// NotificationConfig holds delivery settings.
type NotificationConfig struct {
	// Locale used when the request context names none
	Locale string

	// Async delivers intents in the background after the response
	Async bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/leave.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Lark: LarkConfig{
			ReceiveIDType: "open_id",
			APITimeout:    30 * time.Second,
		},
		Notification: NotificationConfig{
			Locale: "en",
			Async:  true,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Lark.Enabled {
		if c.Lark.AppID == "" {
			return fmt.Errorf("lark.app_id is required")
		}
		if c.Lark.AppSecret == "" {
			return fmt.Errorf("lark.app_secret is required")
		}
	}

	return nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:",squash"`
	Database    DatabaseConfig `mapstructure:",squash"`
	Remote      RemoteConfig   `mapstructure:",squash"`
	Sync        SyncConfig     `mapstructure:",squash"`
	Kiosk       KioskConfig    `mapstructure:",squash"`
	Serial      SerialConfig   `mapstructure:",squash"`
	Redis       RedisConfig    `mapstructure:",squash"`
}

// ServerConfig holds the admin HTTP server configuration
type ServerConfig struct {
	Address  string `mapstructure:"server.address"`
	AdminKey string `mapstructure:"server.admin_key"`
	Enabled  bool   `mapstructure:"server.enabled"`
}

// DatabaseConfig holds the local SQLite database configuration
type DatabaseConfig struct {
	Path string `mapstructure:"database.path"`
}

// RemoteConfig holds the remote order authority configuration
type RemoteConfig struct {
	BaseURL string        `mapstructure:"remote.base_url"`
	APIKey  string        `mapstructure:"remote.api_key"`
	Timeout time.Duration `mapstructure:"remote.timeout"`
}

// SyncConfig holds the background job intervals
type SyncConfig struct {
	OrdersInterval time.Duration `mapstructure:"sync.orders_interval"`
	OutboxInterval time.Duration `mapstructure:"sync.outbox_interval"`
	UnlockInterval time.Duration `mapstructure:"sync.unlock_interval"`
	UnlockEnabled  bool          `mapstructure:"sync.unlock_enabled"`
}

// KioskConfig holds the code-entry policy configuration
type KioskConfig struct {
	GraceWindow time.Duration `mapstructure:"kiosk.grace_window"`
	OpenAllCode string        `mapstructure:"kiosk.open_all_code"`
	AllDoors    []string      `mapstructure:"kiosk.all_doors"`
	DoorStagger time.Duration `mapstructure:"kiosk.door_stagger"`
	DoorHold    time.Duration `mapstructure:"kiosk.door_hold"`
}

// SerialConfig holds the relay board serial port configuration
type SerialConfig struct {
	Device  string `mapstructure:"serial.device"`
	Enabled bool   `mapstructure:"serial.enabled"`
}

// RedisConfig holds the optional throttle cache configuration
type RedisConfig struct {
	Host        string        `mapstructure:"redis.host"`
	Port        int           `mapstructure:"redis.port"`
	Password    string        `mapstructure:"redis.password"`
	DB          int           `mapstructure:"redis.db"`
	Enabled     bool          `mapstructure:"redis.enabled"`
	MaxFailures int64         `mapstructure:"redis.max_failures"`
	FailureTTL  time.Duration `mapstructure:"redis.failure_ttl"`
}

// LoadConfig reads configuration from file or environment variables
func LoadConfig(path string) (Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Setup configuration paths
	v.AddConfigPath(path)
	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
		// Continue without a config file - ENV vars and defaults apply
	}

	// Enable environment variables to override config
	v.SetEnvPrefix("KIOSK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Core settings
	v.SetDefault("environment", "development")
	v.SetDefault("server.address", "0.0.0.0:8090")
	v.SetDefault("server.admin_key", "")
	v.SetDefault("server.enabled", true)

	// Database settings
	v.SetDefault("database.path", "kiosk.db")

	// Remote authority settings
	v.SetDefault("remote.base_url", "https://example.com/api/")
	v.SetDefault("remote.api_key", "")
	v.SetDefault("remote.timeout", "10s")

	// Background job settings
	v.SetDefault("sync.orders_interval", "60s")
	v.SetDefault("sync.outbox_interval", "5m")
	v.SetDefault("sync.unlock_interval", "5s")
	v.SetDefault("sync.unlock_enabled", false)

	// Kiosk policy settings
	v.SetDefault("kiosk.grace_window", "15m")
	v.SetDefault("kiosk.open_all_code", "")
	v.SetDefault("kiosk.all_doors", []string{})
	v.SetDefault("kiosk.door_stagger", "500ms")
	v.SetDefault("kiosk.door_hold", "5s")

	// Serial settings
	v.SetDefault("serial.device", "/dev/ttyUSB0")
	v.SetDefault("serial.enabled", false)

	// Redis settings
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.max_failures", 10)
	v.SetDefault("redis.failure_ttl", "1m")
}

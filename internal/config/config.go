package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all ShelfWatch configuration.
type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	Server    ServerConfig    `mapstructure:"server"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
	Alert     AlertConfig     `mapstructure:"alert"`
	Session   SessionConfig   `mapstructure:"session"`
	Transport TransportConfig `mapstructure:"transport"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// StorageConfig defines database settings.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig defines the HTTP trigger surface.
type ServerConfig struct {
	Listen       string `mapstructure:"listen"`
	TriggerToken string `mapstructure:"trigger_token"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// ScheduleConfig defines when the daily check fires.
type ScheduleConfig struct {
	Hour     int    `mapstructure:"hour"`
	Minute   int    `mapstructure:"minute"`
	Second   int    `mapstructure:"second"`
	Timezone string `mapstructure:"timezone"`
}

// AlertConfig defines low-stock alerting parameters.
type AlertConfig struct {
	Threshold int    `mapstructure:"threshold"`
	Recipient string `mapstructure:"recipient"`
	Stream    string `mapstructure:"stream"`
}

// SessionConfig defines transport session persistence.
type SessionConfig struct {
	Key            string `mapstructure:"key"`
	BackupInterval string `mapstructure:"backup_interval"`
}

// TransportConfig defines message delivery integrations. The gateway is
// used when its URL is set; Slack is the fallback.
type TransportConfig struct {
	Gateway GatewayConfig `mapstructure:"gateway"`
	Slack   SlackConfig   `mapstructure:"slack"`
}

// GatewayConfig defines the token-authenticated messaging gateway.
type GatewayConfig struct {
	URL    string `mapstructure:"url"`
	APIKey string `mapstructure:"api_key"`
}

// SlackConfig defines Slack webhook settings.
type SlackConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".shelfwatch"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults
	home, _ := os.UserHomeDir()
	v.SetDefault("storage.path", filepath.Join(home, ".shelfwatch", "shelfwatch.db"))
	v.SetDefault("server.listen", ":8085")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("schedule.hour", 8)
	v.SetDefault("schedule.minute", 0)
	v.SetDefault("schedule.second", 0)
	v.SetDefault("schedule.timezone", "Europe/Istanbul")
	v.SetDefault("alert.threshold", 5)
	v.SetDefault("alert.stream", "low-stock")
	v.SetDefault("session.key", "default")
	v.SetDefault("session.backup_interval", "10m")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Environment variables
	v.SetEnvPrefix("SHELFWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Bad config aborts startup rather than being papered over.
	if d, err := time.ParseDuration(cfg.Session.BackupInterval); err != nil {
		return nil, fmt.Errorf("session.backup_interval %q: %w", cfg.Session.BackupInterval, err)
	} else if d <= 0 {
		return nil, fmt.Errorf("session.backup_interval %q: must be positive", cfg.Session.BackupInterval)
	}

	return &cfg, nil
}

// BackupInterval returns the session backup interval. Load has already
// validated the value; the fallback only covers hand-built configs.
func (c *Config) BackupInterval() time.Duration {
	d, err := time.ParseDuration(c.Session.BackupInterval)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

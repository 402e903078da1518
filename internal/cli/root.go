package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shelfwatch/shelfwatch/internal/config"
	"github.com/shelfwatch/shelfwatch/pkg/alerter"
	"github.com/shelfwatch/shelfwatch/pkg/clock"
	"github.com/shelfwatch/shelfwatch/pkg/guard"
	"github.com/shelfwatch/shelfwatch/pkg/storage"
	"github.com/shelfwatch/shelfwatch/pkg/transport"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "shelfwatch",
	Short: "ShelfWatch - Daily low-stock alerting",
	Long: `ShelfWatch watches an inventory for items running low and notifies a
configured recipient at most once per calendar day, whether the check is
fired by the daily schedule, triggered manually, or run after a restart.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.shelfwatch/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initStore creates a storage backend from config.
func initStore(cfg *config.Config) (*storage.SQLite, error) {
	return storage.NewSQLite(cfg.Storage.Path)
}

// initSender creates the configured message sender. The gateway client
// is also returned separately when selected, so callers can wire its
// session lifecycle.
func initSender(cfg *config.Config) (transport.Sender, *transport.GatewayClient, error) {
	if cfg.Transport.Gateway.URL != "" {
		gw := transport.NewGatewayClient(cfg.Transport.Gateway.URL, cfg.Transport.Gateway.APIKey)
		return gw, gw, nil
	}
	if cfg.Transport.Slack.WebhookURL != "" {
		return transport.NewSlackSender(cfg.Transport.Slack.WebhookURL), nil, nil
	}
	return nil, nil, fmt.Errorf("no transport configured: set transport.gateway.url or transport.slack.webhook_url")
}

// initAlerter wires the check-and-send action. The timezone resolves
// once here; an unknown zone aborts startup.
func initAlerter(cfg *config.Config, store *storage.SQLite, sender transport.Sender, logger *slog.Logger) (*alerter.Alerter, error) {
	if cfg.Alert.Recipient == "" {
		return nil, fmt.Errorf("alert.recipient is required")
	}

	clk, err := clock.NewWallClock(cfg.Schedule.Timezone)
	if err != nil {
		return nil, err
	}

	g := guard.New(store, clk, cfg.Alert.Stream)
	return alerter.New(store, g, sender, store, cfg.Alert.Stream, cfg.Alert.Recipient, cfg.Alert.Threshold, logger), nil
}

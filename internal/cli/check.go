package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfwatch/shelfwatch/pkg/session"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the low-stock check once",
	Long: `Runs a single check-and-send outside the schedule. The daily guard
still applies: if today's alert already went out, the result is SKIPPED.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	store, err := initStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	sender, gateway, err := initSender(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	// Reuse the persisted session and save any refresh for the daemon.
	if gateway != nil {
		sess := session.New(store, gateway, cfg.Session.Key, cfg.BackupInterval(), logger)
		if blob, err := sess.Restore(ctx); err == nil && blob != nil {
			if err := gateway.RestoreSession(blob); err != nil {
				logger.Warn("stored session unusable, transport will re-authenticate", "error", err)
			}
		}
		gateway.OnSessionChanged(sess.OnSessionChanged)
	}

	al, err := initAlerter(cfg, store, sender, logger)
	if err != nil {
		return err
	}

	result, err := al.CheckAndSend(ctx)
	if err != nil {
		return err
	}

	fmt.Println(string(result))
	return nil
}

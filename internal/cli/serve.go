package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfwatch/shelfwatch/internal/server"
	"github.com/shelfwatch/shelfwatch/pkg/scheduler"
	"github.com/shelfwatch/shelfwatch/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the alerting daemon",
	Long: `Starts the daily scheduler, the session backup loop and the HTTP
surface for manual triggering and health checks.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Restore the transport session before anything connects, then keep
	// it backed up so a restart never needs to re-authenticate.
	if gateway != nil {
		sess := session.New(store, gateway, cfg.Session.Key, cfg.BackupInterval(), logger)

		blob, err := sess.Restore(ctx)
		if err != nil {
			logger.Warn("session restore failed, transport will re-authenticate", "error", err)
		} else if blob != nil {
			if err := gateway.RestoreSession(blob); err != nil {
				logger.Warn("stored session unusable, transport will re-authenticate", "error", err)
			} else {
				logger.Info("transport session restored", "key", cfg.Session.Key)
			}
		}

		gateway.OnSessionChanged(sess.OnSessionChanged)
		go sess.Run(ctx)
	}

	al, err := initAlerter(cfg, store, sender, logger)
	if err != nil {
		return err
	}

	sched, err := scheduler.New(scheduler.Spec{
		Hour:     cfg.Schedule.Hour,
		Minute:   cfg.Schedule.Minute,
		Second:   cfg.Schedule.Second,
		Timezone: cfg.Schedule.Timezone,
	}, al.CheckAndSend, logger)
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	apiServer := server.NewServer(al, store, cfg.Server.TriggerToken, logger)

	readTimeout, _ := time.ParseDuration(cfg.Server.ReadTimeout)
	if readTimeout == 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout, _ := time.ParseDuration(cfg.Server.WriteTimeout)
	if writeTimeout == 0 {
		writeTimeout = 30 * time.Second
	}

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      apiServer.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("shelfwatch started",
			"listen", cfg.Server.Listen,
			"timezone", cfg.Schedule.Timezone,
			"transport", sender.Name(),
		)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	}
}

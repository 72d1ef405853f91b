package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/hestia/internal/bot"
	"github.com/UnknownOlympus/hestia/internal/server"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds the commit of pending deletions at shutdown.
const shutdownTimeout = 30 * time.Second

func newBotCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot and the monitoring server",
		Long: `Run the Telegram bot together with the /healthz and /metrics endpoints.
SIGINT or SIGTERM stop polling and commit the deletions still inside their undo window.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBot(cmd.Context())
		},
	}
}

func (a *app) runBot(parent context.Context) error {
	if err := a.cfg.ValidateBot(); err != nil {
		return err
	}

	// Create a context that will be canceled when an interrupt signal is received.
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hestiaBot, err := bot.NewBot(a.log, bot.SessionDeps{
		Backend:  a.client,
		Log:      a.log,
		Metrics:  a.metrics,
		Undo:     a.undoConfig(),
		PageSize: a.cfg.PageSize,
	}, bot.Options{
		Token:        a.cfg.Telegram.Token,
		Poller:       a.cfg.Telegram.Timeout,
		AllowedUsers: a.cfg.Telegram.AllowedUsers,
	})
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	a.log.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Start the bot in a goroutine to allow us to listen for signals.
	go hestiaBot.Start()

	monitoringDone := make(chan struct{})
	go func() {
		defer close(monitoringDone)
		server.StartMonitoringServer(ctx, a.log, a.reg, a.client, a.cfg.Monitoring.Port)
	}()

	<-ctx.Done()
	a.log.Info("Shutdown signal received. Stopping application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = hestiaBot.Stop(shutdownCtx)
	<-monitoringDone
	if err != nil {
		a.log.Error("Application stopped with uncommitted deletions", "error", err)
		return err
	}

	a.log.Info("Application stopped gracefully.")
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/UnknownOlympus/hestia/internal/client/api"
	"github.com/UnknownOlympus/hestia/internal/config"
	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/notify"
	"github.com/UnknownOlympus/hestia/internal/undo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// app is shared by every command. It is filled in before a command runs.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	reg     *prometheus.Registry
	metrics *metrics.Metrics
	client  *api.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "hestia",
		Short: "Employee directory administration",
		Long: `Hestia browses and edits the employee directory served by the employee API.
Run "hestia bot" for the Telegram front-end or use the commands below from a terminal.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	root.AddCommand(
		newBotCmd(a),
		newListCmd(a),
		newStatsCmd(a),
		newDeleteCmd(a),
		newImportCmd(a),
		newExportCmd(a),
	)
	return root
}

// init loads the configuration and builds the shared dependencies.
func (a *app) init(logOut io.Writer) error {
	a.cfg = config.MustLoad()
	a.log = setupLogger(a.cfg.Env, logOut)

	// Create a separate registry for metrics
	a.reg = prometheus.NewRegistry()
	a.reg.MustRegister(collectors.NewGoCollector())
	a.reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.NewMetrics(a.reg)

	client, err := api.NewClient(api.Config{
		BaseURL:  a.cfg.API.BaseURL,
		Timeout:  a.cfg.API.Timeout,
		Throttle: a.cfg.API.Throttle,
	}, a.log, a.metrics)
	if err != nil {
		return fmt.Errorf("failed to create employee api client: %w", err)
	}
	a.client = client
	return nil
}

// undoConfig returns the deferred delete timings of the configuration.
func (a *app) undoConfig() undo.Config {
	return undo.Config{
		DeleteDelay:            a.cfg.Undo.DeleteDelay,
		NoticeDuration:         a.cfg.Undo.NoticeDuration,
		RestoredNoticeDuration: a.cfg.Undo.RestoredNoticeDuration,
		RequestTimeout:         a.cfg.API.Timeout,
	}
}

// consoleNotifier prints notices on w and logs them.
func (a *app) consoleNotifier(w io.Writer) notify.Notifier {
	return notify.Multi{
		notify.Func(func(_ context.Context, notice notify.Notice) {
			fmt.Fprintln(w, notice.Text)
		}),
		notify.NewLog(a.log),
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	dropTime := func(_ []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			return slog.Attr{}
		}
		return a
	}

	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true}))
	case envDev:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case envProd:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn, ReplaceAttr: dropTime}))
	}

	log := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelError, ReplaceAttr: dropTime}))
	log.Error(
		"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
		slog.String("available_envs", "local, development, production"))
	return log
}

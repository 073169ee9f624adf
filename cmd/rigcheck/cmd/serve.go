package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/rigcheck/internal/config"
	"github.com/Aman-CERP/rigcheck/internal/detect"
	rcerrors "github.com/Aman-CERP/rigcheck/internal/errors"
	"github.com/Aman-CERP/rigcheck/internal/logging"
	"github.com/Aman-CERP/rigcheck/internal/mcp"
)

func newServeCmd() *cobra.Command {
	var (
		transport string
		noWatch   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol server so AI assistants can call
detect_environment and list_categories.

stdout carries JSON-RPC only. Logs go to ~/.rigcheck/logs/rigcheck.log.
Edits to .rigcheck.yaml, .env or the user config apply to the next scan.`,
		Example: `  # Claude Desktop / Claude Code MCP entry
  rigcheck serve`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), transport, !noWatch)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "", "Transport protocol (default from config: stdio)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload configuration when files change")

	return cmd
}

func runServe(ctx context.Context, transport string, watchConfig bool) error {
	cfg, dir, err := loadConfig()
	if err != nil {
		return err
	}

	// Nothing may reach stdout but JSON-RPC, so swap the stderr logger for
	// the log file unless --debug already set one up.
	if !debugMode {
		logger, cleanup, err := logging.Setup(logging.ServeConfig(cfg.Server.LogLevel))
		if err != nil {
			return rcerrors.New(rcerrors.ErrCodeLogSetup, "failed to setup logging", err)
		}
		defer cleanup()
		slog.SetDefault(logger)
	}

	if transport == "" {
		transport = cfg.Server.Transport
	}

	d, err := newDetector(cfg, detect.DefaultProbes())
	if err != nil {
		return err
	}

	srv, err := mcp.NewServer(d, mcp.WithLogger(slog.Default()))
	if err != nil {
		return rcerrors.InternalError("failed to create MCP server", err)
	}
	defer func() { _ = srv.Close() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchConfig {
		go watchSettings(ctx, dir, d)
	}

	slog.Info("rigcheck MCP server starting",
		slog.String("transport", transport),
		slog.String("dir", dir),
		slog.Int("probes", len(d.Probes())))

	return srv.Serve(ctx, transport)
}

// watchSettings applies configuration edits to the detector until ctx ends.
// An invalid edit is logged and the previous settings stay in force.
func watchSettings(ctx context.Context, dir string, d *detect.Detector) {
	err := config.Watch(ctx, dir, func(cfg *config.Config, err error) {
		if err != nil {
			slog.Warn("config reload failed", slog.String("error", err.Error()))
			return
		}
		d.SetSettings(cfg.Settings())
		slog.Info("config reloaded",
			slog.Float64("ram_ok_gb", cfg.Thresholds.RAMOkGB),
			slog.String("min_cuda_version", cfg.Thresholds.MinCUDAVersion))
	})
	if err != nil {
		slog.Warn("config watch unavailable", slog.Any("error", rcerrors.FormatForLog(err)))
	}
}

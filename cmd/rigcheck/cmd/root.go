// Package cmd provides the CLI commands for rigcheck.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/rigcheck/internal/config"
	"github.com/Aman-CERP/rigcheck/internal/detect"
	rcerrors "github.com/Aman-CERP/rigcheck/internal/errors"
	"github.com/Aman-CERP/rigcheck/internal/logging"
	"github.com/Aman-CERP/rigcheck/internal/runner"
	"github.com/Aman-CERP/rigcheck/pkg/version"
)

// Persistent flags
var (
	debugMode      bool
	configDir      string
	loggingCleanup func()
)

// newRunner builds the command runner probes use. Tests replace it.
var newRunner = func(timeout time.Duration) runner.Runner {
	return runner.NewExec(runner.WithTimeout(timeout), runner.WithLogger(slog.Default()))
}

// reportedError marks an error whose output has already been written.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// NewRootCmd creates the root command for rigcheck CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rigcheck",
		Short: "Check a workstation's readiness for local AI work",
		Long: `rigcheck inspects this machine's hardware, GPU runtime, AI frameworks,
local model servers and developer tools, and reports a status for each.

Run 'rigcheck' or 'rigcheck detect' for a report, or 'rigcheck serve' to
expose the same scan to AI assistants over MCP.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return cmd.Help()
			}
			return runDetect(cmd, detectOptions{})
		},
	}

	cmd.SetVersionTemplate("rigcheck version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.rigcheck/logs/")
	cmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory holding .rigcheck.yaml and .env (default: current directory)")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newDetectCmd())
	cmd.AddCommand(newCategoriesCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging installs the process logger. Without --debug only warnings
// reach stderr; serve replaces this with file logging.
func startLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig("warn")
	if debugMode {
		cfg = logging.DebugConfig()
	}

	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return rcerrors.New(rcerrors.ErrCodeLogSetup, "failed to setup logging", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)

	if debugMode {
		slog.Info("Debug logging enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Version))
	}
	return nil
}

// stopLogging flushes and closes the log file.
func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	return execute(NewRootCmd(), os.Stderr)
}

func execute(cmd *cobra.Command, stderr io.Writer) error {
	err := cmd.Execute()
	if err == nil {
		return nil
	}
	var reported reportedError
	if !errors.As(err, &reported) {
		_, _ = fmt.Fprint(stderr, rcerrors.FormatForCLI(err))
	}
	return err
}

// workDir returns --config-dir, or the current directory.
func workDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", rcerrors.IOError("failed to get current directory", err)
	}
	return dir, nil
}

// loadConfig loads the effective configuration for the working directory.
func loadConfig() (*config.Config, string, error) {
	dir, err := workDir()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		if _, ok := rcerrors.As(err); ok {
			return nil, "", err
		}
		return nil, "", rcerrors.ConfigError(err.Error(), err).
			WithSuggestion("Check .rigcheck.yaml, the user config and RIGCHECK_* variables.")
	}
	return cfg, dir, nil
}

// newDetector builds a detector for cfg over the given probes.
func newDetector(cfg *config.Config, probes []detect.Probe, opts ...detect.Option) (*detect.Detector, error) {
	opts = append([]detect.Option{
		detect.WithSettings(cfg.Settings()),
		detect.WithProbes(probes),
		detect.WithLogger(slog.Default()),
	}, opts...)
	return detect.NewDetector(newRunner(cfg.Detect.CommandTimeout), opts...)
}

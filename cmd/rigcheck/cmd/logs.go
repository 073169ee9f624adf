package cmd

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	rcerrors "github.com/Aman-CERP/rigcheck/internal/errors"
	"github.com/Aman-CERP/rigcheck/internal/logging"
	"github.com/Aman-CERP/rigcheck/internal/ui"
)

func newLogsCmd() *cobra.Command {
	var (
		lines   int
		level   string
		probe   string
		filter  string
		logFile string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent log entries",
		Long: `Show the last entries of rigcheck's log file (~/.rigcheck/logs/rigcheck.log).

The file is written by 'rigcheck serve' and by any command run with --debug.`,
		Example: `  # Last 50 entries
  rigcheck logs

  # Warnings and errors from the GPU check
  rigcheck logs --level warn --probe gpu`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := logging.FindLogFile(logFile)
			if err != nil {
				return rcerrors.IOError(err.Error(), err)
			}

			var pattern *regexp.Regexp
			if filter != "" {
				pattern, err = regexp.Compile(filter)
				if err != nil {
					return rcerrors.ValidationError(fmt.Sprintf("invalid --filter pattern: %v", err), err)
				}
			}

			viewer := logging.NewViewer(logging.ViewerConfig{
				Level:   strings.ToLower(level),
				Probe:   probe,
				Pattern: pattern,
				NoColor: noColor || ui.DetectNoColor() || !ui.IsTTY(cmd.OutOrStdout()),
			}, cmd.OutOrStdout())

			entries, err := viewer.Tail(path, lines)
			if err != nil {
				return rcerrors.IOError(err.Error(), err)
			}
			viewer.Print(entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to read from the end of the file")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level (debug|info|warn|error)")
	cmd.Flags().StringVar(&probe, "probe", "", "Only entries for this check id")
	cmd.Flags().StringVar(&filter, "filter", "", "Only lines matching this regex")
	cmd.Flags().StringVar(&logFile, "file", "", "Custom log file path")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}

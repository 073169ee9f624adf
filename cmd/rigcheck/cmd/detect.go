package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/rigcheck/internal/config"
	"github.com/Aman-CERP/rigcheck/internal/detect"
	rcerrors "github.com/Aman-CERP/rigcheck/internal/errors"
	"github.com/Aman-CERP/rigcheck/internal/ui"
)

type detectOptions struct {
	jsonOutput bool
	plain      bool
	noColor    bool
	categories []string
}

func newDetectCmd() *cobra.Command {
	var opts detectOptions

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Scan this machine and print a report",
		Long: `Scan hardware, GPU runtime, AI frameworks, local model servers and
developer tools, then print a report grouped by category.

Every check runs concurrently. A missing or outdated component is a status in
the report, not a failure; the command fails only when the scan itself cannot
complete.`,
		Example: `  # Live report
  rigcheck detect

  # Machine-readable output
  rigcheck detect --json

  # Only hardware and AI servers
  rigcheck detect --category hardware --category ai_servers`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDetect(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "Plain text output (no live view)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colors")
	cmd.Flags().StringSliceVar(&opts.categories, "category", nil, "Only run checks in these categories (id or label)")

	return cmd
}

func runDetect(cmd *cobra.Command, opts detectOptions) error {
	cats, err := parseCategories(opts.categories)
	if err != nil {
		return err
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	probes := detect.FilterProbes(detect.DefaultProbes(), cats...)
	slog.Debug("detect starting",
		slog.Int("probes", len(probes)),
		slog.Any("categories", cats))

	if opts.jsonOutput {
		return runDetectJSON(cmd, cfg, probes)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	renderer := ui.NewRenderer(ui.NewConfig(cmd.OutOrStdout(),
		ui.WithForcePlain(opts.plain),
		ui.WithNoColor(opts.noColor || ui.DetectNoColor()),
		ui.WithOnCancel(cancel),
	))

	d, err := newDetector(cfg, probes, detect.WithOnResult(renderer.ProbeDone))
	if err != nil {
		return err
	}

	// The renderer outlives ctx so a quit still draws its last frame.
	if err := renderer.Start(cmd.Context(), len(probes)); err != nil {
		return rcerrors.InternalError("failed to start renderer", err)
	}
	defer func() { _ = renderer.Stop() }()

	return runScan(ctx, d, renderer)
}

// runScan runs d and hands the outcome to renderer. A scan whose context was
// cancelled part way is reported as cancelled, not as a partial report.
func runScan(ctx context.Context, d *detect.Detector, renderer ui.Renderer) error {
	snap, err := d.DetectAll(ctx)
	if err == nil && ctx.Err() != nil {
		err = rcerrors.ScanCancelled(ctx.Err())
	}
	if err != nil {
		renderer.Fail(err)
		return reportedError{err}
	}

	renderer.Complete(snap)
	return nil
}

// runDetectJSON writes the response, or the error response when the scan fails.
func runDetectJSON(cmd *cobra.Command, cfg *config.Config, probes []detect.Probe) error {
	d, err := newDetector(cfg, probes)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	snap, err := d.DetectAll(cmd.Context())
	if err != nil {
		if encErr := enc.Encode(detect.NewErrorResponse(err)); encErr != nil {
			return encErr
		}
		return reportedError{err}
	}
	return enc.Encode(detect.NewResponse(snap))
}

// parseCategories resolves --category values, accepting ids or labels.
func parseCategories(values []string) ([]detect.Category, error) {
	var cats []detect.Category
	for _, v := range values {
		c, ok := detect.ParseCategory(strings.TrimSpace(v))
		if !ok {
			return nil, rcerrors.New(rcerrors.ErrCodeUnknownCategory,
				fmt.Sprintf("unknown category %q", v), nil).
				WithSuggestion("Run 'rigcheck categories' to list valid categories.")
		}
		cats = append(cats, c)
	}
	return cats, nil
}

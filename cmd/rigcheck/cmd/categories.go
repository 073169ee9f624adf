package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/rigcheck/internal/detect"
	"github.com/Aman-CERP/rigcheck/internal/ui"
)

func newCategoriesCmd() *cobra.Command {
	var (
		jsonOutput bool
		noColor    bool
	)

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List result categories",
		Long: `List the categories results are grouped into, in display order.
Either the id or the label can be passed to 'rigcheck detect --category'.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := ui.NewReportRenderer(cmd.OutOrStdout(), noColor || ui.DetectNoColor())
			if jsonOutput {
				return r.RenderJSON(detect.Categories())
			}
			return r.RenderCategories(detect.Categories())
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colors")

	return cmd
}

package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/rigcheck/internal/detect"
)

// ReportRenderer prints a finished snapshot grouped by category.
type ReportRenderer struct {
	out     io.Writer
	styles  Styles
	noColor bool
}

// NewReportRenderer creates a report renderer.
func NewReportRenderer(out io.Writer, noColor bool) *ReportRenderer {
	return &ReportRenderer{
		out:     out,
		styles:  GetStyles(noColor),
		noColor: noColor,
	}
}

// Render writes the grouped report.
func (r *ReportRenderer) Render(snap *detect.Snapshot) error {
	_, err := io.WriteString(r.out, FormatReport(snap, r.styles))
	return err
}

// RenderJSON writes v as indented JSON.
func (r *ReportRenderer) RenderJSON(v any) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// RenderCategories writes the category table.
func (r *ReportRenderer) RenderCategories(cats []detect.CategoryInfo) error {
	var b strings.Builder
	b.WriteString(r.styles.Header.Render("Categories"))
	b.WriteString("\n\n")
	for _, c := range cats {
		fmt.Fprintf(&b, "  %d. %-18s %s\n", c.Order, c.Label, r.styles.Label.Render(string(c.Category)))
	}
	_, err := io.WriteString(r.out, b.String())
	return err
}

// FormatReport renders a snapshot as category sections followed by a
// one-line tally:
//
//	Hardware  3/4 ok
//	  ✓ CPU   AMD Ryzen 9 7950X (16 cores)
//	  ⚠ RAM   64.0 GB, below the recommended 128 GB
//
// Details are indented under their result.
func FormatReport(snap *detect.Snapshot, styles Styles) string {
	if snap == nil || len(snap.Results) == 0 {
		return styles.Dim.Render("No checks were run.") + "\n"
	}

	nameWidth := 0
	for _, res := range snap.Results {
		if w := lipgloss.Width(res.Name); w > nameWidth {
			nameWidth = w
		}
	}

	groups := detect.GroupByCategory(snap.Results)
	var b strings.Builder
	for i, sum := range detect.Summarize(snap) {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(styles.Category.Render(sum.Label))
		b.WriteString("  ")
		b.WriteString(styles.Label.Render(fmt.Sprintf("%d/%d ok", sum.OK, sum.Total)))
		b.WriteByte('\n')

		for _, res := range groups[sum.Category] {
			writeResult(&b, res, nameWidth, styles)
		}
	}

	b.WriteByte('\n')
	b.WriteString(Tally(snap.Results, styles))
	b.WriteByte('\n')
	return b.String()
}

func writeResult(b *strings.Builder, res detect.Result, nameWidth int, styles Styles) {
	status := styles.Status(res.Status)
	name := res.Name + strings.Repeat(" ", nameWidth-lipgloss.Width(res.Name))

	fmt.Fprintf(b, "  %s %s  %s\n",
		status.Render(StatusIcon(res.Status)),
		styles.Name.Render(name),
		res.Message)

	if res.Details == "" {
		return
	}
	indent := strings.Repeat(" ", nameWidth+6)
	for _, line := range strings.Split(res.Details, "\n") {
		b.WriteString(indent)
		b.WriteString(styles.Dim.Render(line))
		b.WriteByte('\n')
	}
}

// Tally summarises result counts, e.g. "22 checks: 15 ok, 4 warnings, 1 error, 2 not installed".
// Zero counts other than ok are omitted.
func Tally(results []detect.Result, styles Styles) string {
	counts := map[detect.Status]int{}
	for _, r := range results {
		counts[r.Status]++
	}

	parts := []string{styles.OK.Render(fmt.Sprintf("%d ok", counts[detect.StatusOK]))}
	if n := counts[detect.StatusWarning]; n > 0 {
		parts = append(parts, styles.Warning.Render(plural(n, "warning")))
	}
	if n := counts[detect.StatusError]; n > 0 {
		parts = append(parts, styles.Error.Render(plural(n, "error")))
	}
	if n := counts[detect.StatusNotInstalled]; n > 0 {
		parts = append(parts, styles.NotInstalled.Render(fmt.Sprintf("%d not installed", n)))
	}

	return fmt.Sprintf("%s: %s", plural(len(results), "check"), strings.Join(parts, ", "))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

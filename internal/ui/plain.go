package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Aman-CERP/rigcheck/internal/detect"
	rcerrors "github.com/Aman-CERP/rigcheck/internal/errors"
)

// PlainRenderer outputs one line per finished probe, then the report
// (for CI and pipes).
type PlainRenderer struct {
	mu      sync.Mutex
	out     io.Writer
	styles  Styles
	title   string
	tracker *ProgressTracker
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{
		out:    cfg.Output,
		styles: GetStyles(cfg.NoColor),
		title:  cfg.Title,
	}
}

// Start implements Renderer.
func (r *PlainRenderer) Start(ctx context.Context, total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tracker = NewProgressTracker(total)
	_, _ = fmt.Fprintf(r.out, "%s: running %d checks\n", r.title, total)
	return nil
}

// ProbeDone implements Renderer.
// Format: [ 3/22] ok            GPU
func (r *PlainRenderer) ProbeDone(res detect.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tracker == nil {
		r.tracker = NewProgressTracker(0)
	}
	r.tracker.Add(res)
	stats := r.tracker.Stats()
	total, done := stats.Total, stats.Done

	width := len(fmt.Sprint(total))
	status := fmt.Sprintf("%-13s", res.Status)
	_, _ = fmt.Fprintf(r.out, "[%*d/%d] %s %s\n", width, done, total,
		r.styles.Status(res.Status).Render(status), res.Name)
}

// Complete implements Renderer.
func (r *PlainRenderer) Complete(snap *detect.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintln(r.out)
	_, _ = io.WriteString(r.out, FormatReport(snap, r.styles))
}

// Fail implements Renderer.
func (r *PlainRenderer) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg := strings.TrimRight(rcerrors.FormatForCLI(err), "\n")
	_, _ = fmt.Fprintln(r.out, r.styles.Error.Render(msg))
}

// Stop implements Renderer.
func (r *PlainRenderer) Stop() error {
	return nil
}

var _ Renderer = (*PlainRenderer)(nil)

package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/rigcheck/internal/detect"
	rcerrors "github.com/Aman-CERP/rigcheck/internal/errors"
)

// TUIRenderer shows a live spinner and progress bar while probes run, and
// leaves the report on screen when the scan completes.
type TUIRenderer struct {
	mu      sync.Mutex
	cfg     Config
	program *tea.Program
	model   *scanModel
	styles  Styles
	started bool
	done    chan struct{}
}

// NewTUIRenderer creates a TUI renderer.
// Returns an error if the output is not a terminal.
func NewTUIRenderer(cfg Config) (*TUIRenderer, error) {
	if !IsTTY(cfg.Output) {
		return nil, fmt.Errorf("output is not a TTY")
	}

	styles := GetStyles(cfg.NoColor || DetectNoColor())
	return &TUIRenderer{
		cfg:    cfg,
		styles: styles,
		done:   make(chan struct{}),
	}, nil
}

// Start implements Renderer.
func (r *TUIRenderer) Start(ctx context.Context, total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}

	r.model = newScanModel(NewProgressTracker(total), r.cfg.Title, r.styles)
	r.model.onCancel = r.cfg.OnCancel

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if f, ok := r.cfg.Output.(*os.File); ok {
		opts = append(opts, tea.WithOutput(f))
	}

	r.program = tea.NewProgram(r.model, opts...)
	r.started = true

	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()

	return nil
}

// ProbeDone implements Renderer.
func (r *TUIRenderer) ProbeDone(res detect.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.model == nil {
		return
	}
	r.model.tracker.Add(res)
	r.program.Send(probeDoneMsg(res))
}

// Complete implements Renderer. It returns once the report has been drawn.
func (r *TUIRenderer) Complete(snap *detect.Snapshot) {
	r.finish(completeMsg(FormatReport(snap, r.styles)))
}

// Fail implements Renderer.
func (r *TUIRenderer) Fail(err error) {
	msg := strings.TrimRight(rcerrors.FormatForCLI(err), "\n")
	r.finish(failMsg(r.styles.Error.Render(msg) + "\n"))
}

func (r *TUIRenderer) finish(msg tea.Msg) {
	r.mu.Lock()
	program := r.program
	r.mu.Unlock()

	if program == nil {
		return
	}
	program.Send(msg)
	r.wait()
}

// Stop implements Renderer.
func (r *TUIRenderer) Stop() error {
	r.mu.Lock()
	program := r.program
	r.mu.Unlock()

	if program != nil {
		program.Quit()
		r.wait()
	}
	return nil
}

// wait blocks until the program exits, giving up after two seconds so an
// unresponsive terminal cannot hang the process.
func (r *TUIRenderer) wait() {
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
	}
}

// Message types for bubbletea
type probeDoneMsg detect.Result
type completeMsg string
type failMsg string

// scanModel is the bubbletea model for a running scan.
type scanModel struct {
	tracker     *ProgressTracker
	title       string
	width       int
	quitting    atomic.Bool // read by the renderer goroutine
	onCancel    func()
	final       string
	spinner     spinner.Model
	progressBar progress.Model
	styles      Styles
}

func newScanModel(tracker *ProgressTracker, title string, styles Styles) *scanModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Active

	p := progress.New(
		progress.WithSolidFill(ColorLime),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	return &scanModel{
		tracker:     tracker,
		title:       title,
		spinner:     s,
		progressBar: p,
		styles:      styles,
		width:       80,
	}
}

// Init implements tea.Model.
func (m *scanModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *scanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.final == "" && !m.quitting.Swap(true) && m.onCancel != nil {
				m.onCancel()
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progressBar.Width = min(max(msg.Width-30, 20), 60)

	case probeDoneMsg:
		// Already counted by the tracker
		return m, nil

	case completeMsg:
		m.final = string(msg)
		return m, tea.Quit

	case failMsg:
		m.final = string(msg)
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m *scanModel) View() string {
	if m.final != "" {
		return m.final
	}
	if m.quitting.Load() {
		return "Cancelled.\n"
	}

	stats := m.tracker.Stats()

	header := m.styles.Header.Render(m.title) + m.styles.Dim.Render(" • checking this machine")

	bar := fmt.Sprintf("%s %s  %s %s",
		m.spinner.View(),
		m.progressBar.ViewAs(stats.Progress),
		m.styles.Active.Render(fmt.Sprintf("%3.0f%%", stats.Progress*100)),
		m.styles.Label.Render(fmt.Sprintf("%d/%d", stats.Done, stats.Total)))

	var status []string
	if stats.Last != "" {
		status = append(status, m.styles.Label.Render("last: "+stats.Last))
	}
	if stats.Warnings > 0 {
		status = append(status, m.styles.Warning.Render(fmt.Sprintf("%s %s", StatusIcon(detect.StatusWarning), plural(stats.Warnings, "warning"))))
	}
	if stats.Errors > 0 {
		status = append(status, m.styles.Error.Render(fmt.Sprintf("%s %s", StatusIcon(detect.StatusError), plural(stats.Errors, "error"))))
	}
	status = append(status, m.styles.Dim.Render("q to quit"))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		bar,
		strings.Join(status, m.styles.Dim.Render("  │  ")),
	) + "\n"
}

var _ Renderer = (*TUIRenderer)(nil)

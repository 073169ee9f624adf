package detect

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	rcerrors "github.com/Aman-CERP/rigcheck/internal/errors"
	"github.com/Aman-CERP/rigcheck/internal/runner"
)

// ErrDuplicateProbe is returned when two probes share an id.
var ErrDuplicateProbe = rcerrors.New(rcerrors.ErrCodeDuplicateProbe, "duplicate probe id", nil)

// Detector runs all registered probes concurrently and aggregates their
// results in registration order.
type Detector struct {
	runner   runner.Runner
	probes   []Probe
	clock    func() time.Time
	logger   *slog.Logger
	onResult func(Result)

	mu       sync.RWMutex
	settings Settings
}

// Option configures a Detector.
type Option func(*Detector)

// WithSettings sets the probe settings.
func WithSettings(s Settings) Option {
	return func(d *Detector) {
		d.settings = s
	}
}

// WithThresholds overrides only the classification thresholds.
func WithThresholds(t Thresholds) Option {
	return func(d *Detector) {
		d.settings.Thresholds = t
	}
}

// WithProbes replaces the default probe set.
func WithProbes(probes []Probe) Option {
	return func(d *Detector) {
		d.probes = probes
	}
}

// WithClock sets the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(d *Detector) {
		if clock != nil {
			d.clock = clock
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithOnResult registers a callback invoked as each probe finishes, in
// completion order. It may be called from several goroutines at once.
func WithOnResult(fn func(Result)) Option {
	return func(d *Detector) {
		d.onResult = fn
	}
}

// NewDetector creates a Detector. It fails if two probes share an id or a
// probe has no check.
func NewDetector(r runner.Runner, opts ...Option) (*Detector, error) {
	d := &Detector{
		runner:   r,
		probes:   DefaultProbes(),
		clock:    time.Now,
		logger:   slog.Default(),
		settings: DefaultSettings(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.settings = d.settings.withDefaults()

	seen := make(map[string]bool, len(d.probes))
	for _, p := range d.probes {
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateProbe, p.ID)
		}
		seen[p.ID] = true
		if p.Check == nil {
			return nil, rcerrors.ValidationError(fmt.Sprintf("probe %q has no check", p.ID), nil)
		}
	}
	return d, nil
}

// Probes returns the registered probes in order.
func (d *Detector) Probes() []Probe {
	out := make([]Probe, len(d.probes))
	copy(out, d.probes)
	return out
}

// Settings returns the settings the next scan will use.
func (d *Detector) Settings() Settings {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.settings
}

// SetSettings swaps the settings for subsequent scans.
// A scan already in progress keeps the settings it started with.
func (d *Detector) SetSettings(s Settings) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settings = s.withDefaults()
}

// DetectAll runs every probe concurrently and waits for all of them.
// Results are in registration order regardless of completion order.
// Probe-level problems are statuses inside results; an error is returned
// only when the orchestration itself fails, and then no snapshot is returned.
func (d *Detector) DetectAll(ctx context.Context) (*Snapshot, error) {
	settings := d.Settings()
	start := d.clock()
	results := make([]Result, len(d.probes))

	var g errgroup.Group
	for i, p := range d.probes {
		g.Go(func() error {
			r, err := d.runProbe(ctx, p, settings)
			if err != nil {
				return err
			}
			results[i] = r
			if d.onResult != nil {
				d.onResult(r)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		d.logger.Error("detection failed", slog.Any("error", err))
		return nil, rcerrors.DetectionFailed(err)
	}

	d.logger.Debug("detection complete",
		slog.Int("probes", len(results)),
		slog.Duration("duration", d.clock().Sub(start)))

	return &Snapshot{Timestamp: start.UTC(), Results: results}, nil
}

// runProbe executes one probe, turning a panic into an error.
func (d *Detector) runProbe(ctx context.Context, p Probe, s Settings) (result Result, err error) {
	probeStart := time.Now()
	defer func() {
		if v := recover(); v != nil {
			d.logger.Error("probe panicked",
				slog.String("probe", p.ID),
				slog.Any("panic", v),
				slog.String("stack", string(debug.Stack())))
			err = rcerrors.ProbePanic(p.ID, v)
		}
	}()

	result = p.Run(ctx, d.runner, s)
	d.logger.Debug("probe finished",
		slog.String("probe", p.ID),
		slog.String("status", string(result.Status)),
		slog.Duration("duration", time.Since(probeStart)))
	return result, nil
}

package ui

import (
	"sync"
	"time"

	"github.com/Aman-CERP/rigcheck/internal/detect"
)

// ProgressTracker counts finished probes during a scan.
// It is safe for concurrent use.
type ProgressTracker struct {
	mu        sync.RWMutex
	total     int
	done      int
	counts    map[detect.Status]int
	last      string
	startTime time.Time
}

// ProgressStats is a snapshot of a scan in progress.
type ProgressStats struct {
	Total    int
	Done     int
	Progress float64
	Last     string // name of the most recently finished probe
	Warnings int
	Errors   int
	Elapsed  time.Duration
}

// NewProgressTracker creates a tracker expecting total probes.
func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{
		total:     total,
		counts:    make(map[detect.Status]int),
		startTime: time.Now(),
	}
}

// Add records a finished probe.
func (p *ProgressTracker) Add(res detect.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	p.counts[res.Status]++
	p.last = res.Name
}

// Progress returns the completed fraction in [0, 1].
func (p *ProgressTracker) Progress() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.progress()
}

func (p *ProgressTracker) progress() float64 {
	if p.total <= 0 {
		return 0
	}
	if p.done >= p.total {
		return 1
	}
	return float64(p.done) / float64(p.total)
}

// Stats returns a snapshot of the current progress.
func (p *ProgressTracker) Stats() ProgressStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return ProgressStats{
		Total:    p.total,
		Done:     p.done,
		Progress: p.progress(),
		Last:     p.last,
		Warnings: p.counts[detect.StatusWarning],
		Errors:   p.counts[detect.StatusError],
		Elapsed:  time.Since(p.startTime),
	}
}

package ui

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/rigcheck/internal/detect"
)

func TestProgressTracker(t *testing.T) {
	p := NewProgressTracker(4)
	assert.Zero(t, p.Progress())

	p.Add(detect.Result{Name: "CPU", Status: detect.StatusOK})
	p.Add(detect.Result{Name: "RAM", Status: detect.StatusWarning})
	p.Add(detect.Result{Name: "WSL", Status: detect.StatusError})

	stats := p.Stats()
	assert.Equal(t, 3, stats.Done)
	assert.Equal(t, 4, stats.Total)
	assert.InDelta(t, 0.75, stats.Progress, 1e-9)
	assert.Equal(t, "WSL", stats.Last)
	assert.Equal(t, 1, stats.Warnings)
	assert.Equal(t, 1, stats.Errors)
}

func TestProgressTracker_ClampsAndHandlesZeroTotal(t *testing.T) {
	assert.Zero(t, NewProgressTracker(0).Progress())

	p := NewProgressTracker(1)
	p.Add(detect.Result{})
	p.Add(detect.Result{})
	assert.Equal(t, 1.0, p.Progress())
}

func TestProgressTracker_Concurrent(t *testing.T) {
	p := NewProgressTracker(100)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Add(detect.Result{Status: detect.StatusOK})
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, p.Stats().Done)
}

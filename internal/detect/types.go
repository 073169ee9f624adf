// Package detect inspects a workstation's hardware and AI tooling.
//
// Each component has a Probe that issues commands through a runner.Runner,
// parses the output into a typed value and classifies it into a Status.
// A Detector runs every probe concurrently and returns a Snapshot whose
// results are always in registration order.
package detect

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Aman-CERP/rigcheck/internal/runner"
)

// Status is the classification outcome of a probe.
type Status string

const (
	// StatusOK means the component is present and meets requirements.
	StatusOK Status = "ok"
	// StatusWarning means the component is present but degraded or below a threshold.
	StatusWarning Status = "warning"
	// StatusError means a required component is missing or unusable.
	StatusError Status = "error"
	// StatusNotInstalled means an optional component was not found.
	StatusNotInstalled Status = "not_installed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOK, StatusWarning, StatusError, StatusNotInstalled:
		return true
	default:
		return false
	}
}

// Result is the normalized record of one component's presence, version and status.
type Result struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Status   Status   `json:"status"`
	Version  string   `json:"version,omitempty"`
	Details  string   `json:"details,omitempty"`
	Message  string   `json:"message"`
}

// Snapshot is the outcome of one full scan.
// Snapshots are never merged or reused across scans.
type Snapshot struct {
	Timestamp time.Time `json:"-"`
	Results   []Result  `json:"results"`
}

// MarshalJSON renders the timestamp as RFC 3339 in UTC.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(NewResponse(&s))
}

// Find returns the result with the given id.
func (s *Snapshot) Find(id string) (Result, bool) {
	for _, r := range s.Results {
		if r.ID == id {
			return r, true
		}
	}
	return Result{}, false
}

// Finding is what a probe's check concludes, before probe metadata is attached.
type Finding struct {
	Status  Status
	Version string
	Details string
	Message string
}

// CheckFunc inspects ambient host state through r.
// It must not panic and must return a Finding for every input.
type CheckFunc func(ctx context.Context, r runner.Runner, s Settings) Finding

// Probe is a self-contained detection routine for one component.
type Probe struct {
	ID       string
	Name     string
	Category Category
	Check    CheckFunc
}

// Run executes the probe's check and stamps the result with probe metadata.
// Status and Message are always populated.
func (p Probe) Run(ctx context.Context, r runner.Runner, s Settings) Result {
	f := p.Check(ctx, r, s)

	if !f.Status.Valid() {
		f.Status = StatusWarning
	}
	if f.Message == "" {
		f.Message = defaultMessage(p.Name, f.Status)
	}

	return Result{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Status:   f.Status,
		Version:  f.Version,
		Details:  f.Details,
		Message:  f.Message,
	}
}

func defaultMessage(name string, status Status) string {
	switch status {
	case StatusOK:
		return name + " detected"
	case StatusNotInstalled:
		return name + " not installed"
	case StatusError:
		return name + " unavailable"
	default:
		return name + " could not be fully determined"
	}
}

// Settings carries the tunables probes read. Thresholds are tuned for one
// workstation profile and are expected to be overridden per machine.
type Settings struct {
	// Python is the interpreter used for framework import checks.
	Python string
	// OllamaHost is the base URL of the local Ollama API.
	OllamaHost string
	// LMStudioHost is the base URL of the LM Studio OpenAI-compatible server.
	LMStudioHost string
	// Thresholds are the classification cutoffs.
	Thresholds Thresholds
}

// Thresholds are the named cutoffs used by classification rules.
// All comparisons are inclusive at the lower bound.
type Thresholds struct {
	// RAMOkGB is the minimum total memory for an ok RAM status.
	RAMOkGB float64
	// RAMWarnGB is the minimum total memory for a warning (below is error).
	RAMWarnGB float64
	// MinCUDAVersion is the minimum CUDA toolkit release, e.g. "12.8".
	MinCUDAVersion string
	// MinWSLKernel is the minimum WSL kernel version, e.g. "5.15".
	MinWSLKernel string
	// HighEndGPUVRAMMB is the VRAM a single GPU needs to count as high-end.
	HighEndGPUVRAMMB int
}

// Default settings values.
const (
	DefaultPython           = "python3"
	DefaultOllamaHost       = "http://localhost:11434"
	DefaultLMStudioHost     = "http://localhost:1234"
	DefaultRAMOkGB          = 128
	DefaultRAMWarnGB        = 48
	DefaultMinCUDAVersion   = "12.8"
	DefaultMinWSLKernel     = "5.15"
	DefaultHighEndGPUVRAMMB = 24000
)

// DefaultSettings returns the settings for the reference workstation profile.
func DefaultSettings() Settings {
	return Settings{
		Python:       DefaultPython,
		OllamaHost:   DefaultOllamaHost,
		LMStudioHost: DefaultLMStudioHost,
		Thresholds: Thresholds{
			RAMOkGB:          DefaultRAMOkGB,
			RAMWarnGB:        DefaultRAMWarnGB,
			MinCUDAVersion:   DefaultMinCUDAVersion,
			MinWSLKernel:     DefaultMinWSLKernel,
			HighEndGPUVRAMMB: DefaultHighEndGPUVRAMMB,
		},
	}
}

// withDefaults fills empty fields from DefaultSettings.
func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.Python == "" {
		s.Python = d.Python
	}
	if s.OllamaHost == "" {
		s.OllamaHost = d.OllamaHost
	}
	if s.LMStudioHost == "" {
		s.LMStudioHost = d.LMStudioHost
	}
	if s.Thresholds.RAMOkGB == 0 {
		s.Thresholds.RAMOkGB = d.Thresholds.RAMOkGB
	}
	if s.Thresholds.RAMWarnGB == 0 {
		s.Thresholds.RAMWarnGB = d.Thresholds.RAMWarnGB
	}
	if s.Thresholds.MinCUDAVersion == "" {
		s.Thresholds.MinCUDAVersion = d.Thresholds.MinCUDAVersion
	}
	if s.Thresholds.MinWSLKernel == "" {
		s.Thresholds.MinWSLKernel = d.Thresholds.MinWSLKernel
	}
	if s.Thresholds.HighEndGPUVRAMMB == 0 {
		s.Thresholds.HighEndGPUVRAMMB = d.Thresholds.HighEndGPUVRAMMB
	}
	return s
}

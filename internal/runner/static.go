package runner

import (
	"context"
	"sync"
	"time"
)

// Static is a Runner that answers from canned outputs.
// Commands without a registered answer fail with ReasonMissing.
// It is safe for concurrent use.
type Static struct {
	mu      sync.Mutex
	outputs map[string]string
	delays  map[string]time.Duration
	calls   []string
}

// NewStatic creates a Static runner from a command -> stdout map.
func NewStatic(outputs map[string]string) *Static {
	s := &Static{
		outputs: make(map[string]string, len(outputs)),
		delays:  make(map[string]time.Duration),
	}
	for cmd, out := range outputs {
		s.outputs[cmd] = out
	}
	return s
}

// Set registers stdout for command.
func (s *Static) Set(command, stdout string) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs[command] = stdout
	return s
}

// Delay makes command take d before answering.
func (s *Static) Delay(command string, d time.Duration) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[command] = d
	return s
}

// Calls returns the commands received so far, in call order.
func (s *Static) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// Run implements Runner.
func (s *Static) Run(ctx context.Context, command string) Output {
	s.mu.Lock()
	s.calls = append(s.calls, command)
	stdout, ok := s.outputs[command]
	delay := s.delays[command]
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return Failure(ReasonTimeout)
		}
	}

	if !ok {
		return Failure(ReasonMissing)
	}
	return Success(stdout)
}

// Ensure Static implements Runner
var _ Runner = (*Static)(nil)

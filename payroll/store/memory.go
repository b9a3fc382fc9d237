// Package store provides payroll.Store implementations.
package store

import (
	"context"
	"slices"
	"sync"

	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu   sync.RWMutex
	runs []payroll.Run
	keys map[string]bool
}

func NewMemory() *Memory {
	return &Memory{keys: make(map[string]bool)}
}

// Append adds a run. Append-only.
func (m *Memory) Append(_ context.Context, run payroll.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if run.Key != "" && m.keys[run.Key] {
		return payroll.ErrDuplicateRun
	}
	run.Lines = slices.Clone(run.Lines)
	m.runs = append(m.runs, run)
	if run.Key != "" {
		m.keys[run.Key] = true
	}
	return nil
}

func (m *Memory) List(_ context.Context) ([]payroll.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]payroll.Run, len(m.runs))
	for i, run := range m.runs {
		run.Lines = slices.Clone(run.Lines)
		result[i] = run
	}
	return result, nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.keys[key], nil
}

package engine

import "sync"

// MockProgress is a test implementation of the ProgressSink interface.
type MockProgress struct {
	calls []int
	mu    sync.Mutex
}

// NewMockProgress creates a new mock progress sink.
func NewMockProgress() *MockProgress {
	return &MockProgress{calls: make([]int, 0, 3)}
}

// Progress records the reported percentage.
func (m *MockProgress) Progress(percent int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, percent)
}

// Calls returns every percentage reported so far.
func (m *MockProgress) Calls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.calls))
	copy(out, m.calls)
	return out
}

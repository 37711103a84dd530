package publish

import (
	"context"
	"path/filepath"
	"sync"
)

// MockPublisher is a test double for Publisher interface. It is safe for
// concurrent use.
type MockPublisher struct {
	root string

	// Function mocks - set these to customize behavior
	PublishFunc func(sid string, files []File) ([]string, error)
	RemoveFunc  func(sid string) error
	ListFunc    func() ([]Entry, error)
	ExistsFunc  func(sid string) (bool, error)

	// Call tracking - check these to verify interactions
	PublishCalls []PublishCall
	RemoveCalls  []string
	ListCalls    int
	ExistsCalls  []string

	mu sync.Mutex
}

// PublishCall records arguments passed to Publish
type PublishCall struct {
	SID   string
	Files []File
}

// NewMockPublisher creates a new MockPublisher with default no-op implementations
func NewMockPublisher(root string) *MockPublisher {
	return &MockPublisher{
		root:         root,
		PublishCalls: make([]PublishCall, 0),
		RemoveCalls:  make([]string, 0),
		ExistsCalls:  make([]string, 0),
	}
}

// Name returns the publisher name
func (m *MockPublisher) Name() string {
	return "mock"
}

// Dir returns the directory for sid below the mock root
func (m *MockPublisher) Dir(sid string) string {
	return filepath.Join(m.root, sid, sid, "sites", "default")
}

// Publish records the call and invokes the mock function if set
func (m *MockPublisher) Publish(ctx context.Context, sid string, files []File) ([]string, error) {
	m.mu.Lock()
	m.PublishCalls = append(m.PublishCalls, PublishCall{SID: sid, Files: files})
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.PublishFunc != nil {
		return m.PublishFunc(sid, files)
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, filepath.Join(m.Dir(sid), f.Name))
	}
	return paths, nil
}

// Remove records the call and invokes the mock function if set
func (m *MockPublisher) Remove(sid string) error {
	m.mu.Lock()
	m.RemoveCalls = append(m.RemoveCalls, sid)
	m.mu.Unlock()

	if m.RemoveFunc != nil {
		return m.RemoveFunc(sid)
	}
	return nil
}

// List records the call and invokes the mock function if set
func (m *MockPublisher) List() ([]Entry, error) {
	m.mu.Lock()
	m.ListCalls++
	m.mu.Unlock()

	if m.ListFunc != nil {
		return m.ListFunc()
	}
	return []Entry{}, nil
}

// Exists records the call and invokes the mock function if set
func (m *MockPublisher) Exists(sid string) (bool, error) {
	m.mu.Lock()
	m.ExistsCalls = append(m.ExistsCalls, sid)
	m.mu.Unlock()

	if m.ExistsFunc != nil {
		return m.ExistsFunc(sid)
	}
	return false, nil
}

// PublishedSIDs returns the sids passed to Publish, in call order
func (m *MockPublisher) PublishedSIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	sids := make([]string, 0, len(m.PublishCalls))
	for _, c := range m.PublishCalls {
		sids = append(sids, c.SID)
	}
	return sids
}

// Reset clears all call tracking
func (m *MockPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCalls = make([]PublishCall, 0)
	m.RemoveCalls = make([]string, 0)
	m.ExistsCalls = make([]string, 0)
	m.ListCalls = 0
}

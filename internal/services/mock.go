package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/sceneforge/rigkit/pkg/rig"
	"github.com/sceneforge/rigkit/pkg/scene"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	templates map[string]*scene.Template
	sessions  map[string]*rig.EditLog
	pingError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		templates: make(map[string]*scene.Template),
		sessions:  make(map[string]*rig.EditLog),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail on SaveTemplate
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// AddTemplate seeds the mock with a template
func (m *MockStorage) AddTemplate(t *scene.Template) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[t.FileName] = t
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// ListTemplates mocks listing templates
func (m *MockStorage) ListTemplates(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.templates))
	for _, t := range m.templates {
		out[t.Name] = t.FileName
	}
	return out, nil
}

// GetTemplate mocks loading a template. Like the real storage, every load
// returns a fresh editable copy.
func (m *MockStorage) GetTemplate(ctx context.Context, filename string) (*scene.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.templates[filename]
	if !ok {
		return nil, fmt.Errorf("template not found: %s", filename)
	}
	out := &scene.Template{Name: t.Name, FileName: t.FileName}
	if t.Root != nil {
		out.Root = t.Root.Clone()
	}
	out.Normalize()
	return out, nil
}

// SaveTemplate mocks persisting a template
func (m *MockStorage) SaveTemplate(ctx context.Context, t *scene.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	if t.FileName == "" {
		return fmt.Errorf("template has no file name")
	}
	m.templates[t.FileName] = &scene.Template{Name: t.Name, FileName: t.FileName, Root: t.Root.Clone()}
	return nil
}

// SaveEditSession mocks persisting an edit log
func (m *MockStorage) SaveEditSession(ctx context.Context, log *rig.EditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[log.RunID] = log
	return nil
}

// GetEditSession mocks retrieving an edit log
func (m *MockStorage) GetEditSession(ctx context.Context, runID string) (*rig.EditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[runID], nil
}

// DeleteEditSession mocks removing an edit log
func (m *MockStorage) DeleteEditSession(ctx context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, runID)
	return nil
}

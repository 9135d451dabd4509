// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/runoshun/planr/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// MockStore is an in-memory test double for domain.Store.
// Tasks are stored as copies so callers cannot mutate stored state by accident.
// Fields are ordered to minimize memory padding.
type MockStore struct {
	Tasks          map[int]*domain.Task
	Edges          map[domain.Edge]struct{}
	SaveErr        error
	GetErr         error
	ListErr        error
	ListEdgesErr   error
	CreateEdgeErr  error
	DeleteEdgeErr  error
	DeleteErr      error
	UpdateStartErr error
	InitErr        error
	NextIDN        int
	StartWrites    int
	Initialized    bool
	mu             sync.Mutex
}

// NewMockStore creates a MockStore with initialized maps.
func NewMockStore() *MockStore {
	return &MockStore{
		Tasks:   make(map[int]*domain.Task),
		Edges:   make(map[domain.Edge]struct{}),
		NextIDN: 1,
	}
}

// Ensure MockStore implements domain.Store.
var _ domain.Store = (*MockStore)(nil)

// AddTask stores a task directly, bypassing error injection. For test setup.
func (m *MockStore) AddTask(task *domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tasks[task.ID] = task.Clone()
	if task.ID >= m.NextIDN {
		m.NextIDN = task.ID + 1
	}
}

// AddEdge stores an edge directly, bypassing validation. For test setup.
func (m *MockStore) AddEdge(dependentID, requiredID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Edges[domain.Edge{DependentID: dependentID, RequiredID: requiredID}] = struct{}{}
}

// Initialize marks the store initialized.
func (m *MockStore) Initialize() error {
	if m.InitErr != nil {
		return m.InitErr
	}
	if m.Initialized {
		return domain.ErrAlreadyInitialized
	}
	m.Initialized = true
	return nil
}

// Get retrieves a task by ID.
func (m *MockStore) Get(id int) (*domain.Task, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Tasks[id].Clone(), nil
}

// List returns all tasks ordered by ID.
func (m *MockStore) List() ([]*domain.Task, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := make([]*domain.Task, 0, len(m.Tasks))
	for _, id := range slices.Sorted(maps.Keys(m.Tasks)) {
		tasks = append(tasks, m.Tasks[id].Clone())
	}
	return tasks, nil
}

// Save stores a copy of the task.
func (m *MockStore) Save(task *domain.Task) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.AddTask(task)
	return nil
}

// Delete removes a task and its edges.
func (m *MockStore) Delete(id int) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Tasks, id)
	for e := range m.Edges {
		if e.Touches(id) {
			delete(m.Edges, e)
		}
	}
	return nil
}

// NextID returns the next available task ID.
func (m *MockStore) NextID() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.NextIDN
	m.NextIDN++
	return id, nil
}

// ListEdges returns every edge in order.
func (m *MockStore) ListEdges() ([]domain.Edge, error) {
	if m.ListEdgesErr != nil {
		return nil, m.ListEdgesErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.SortedFunc(maps.Keys(m.Edges), domain.CompareEdges), nil
}

// CreateEdge stores an edge.
func (m *MockStore) CreateEdge(dependentID, requiredID int) error {
	if m.CreateEdgeErr != nil {
		return m.CreateEdgeErr
	}
	m.AddEdge(dependentID, requiredID)
	return nil
}

// DeleteEdge removes an edge.
func (m *MockStore) DeleteEdge(dependentID, requiredID int) error {
	if m.DeleteEdgeErr != nil {
		return m.DeleteEdgeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Edges, domain.Edge{DependentID: dependentID, RequiredID: requiredID})
	return nil
}

// UpdateEarliestStart records a task's derived earliest start.
func (m *MockStore) UpdateEarliestStart(taskID int, at time.Time) error {
	if m.UpdateStartErr != nil {
		return m.UpdateStartErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.Tasks[taskID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, domain.TaskRefName(taskID))
	}
	t.EarliestStart = &at
	m.StartWrites++
	return nil
}

// HasEdge reports whether the edge is stored.
func (m *MockStore) HasEdge(dependentID, requiredID int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Edges[domain.Edge{DependentID: dependentID, RequiredID: requiredID}]
	return ok
}

// MockBatchStore extends MockStore with domain.EarliestStartBatcher.
type MockBatchStore struct {
	*MockStore
	Batches int
}

// UpdateEarliestStarts writes every start in one call.
func (m *MockBatchStore) UpdateEarliestStarts(starts map[int]time.Time) error {
	if m.UpdateStartErr != nil {
		return m.UpdateStartErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, at := range starts {
		if t, ok := m.Tasks[id]; ok {
			t.EarliestStart = &at
		}
	}
	m.Batches++
	return nil
}

// LogEntry is one recorded log call.
type LogEntry struct {
	Level    string
	Category string
	Msg      string
	TaskID   int
}

// MockLogger records log calls.
type MockLogger struct {
	Entries []LogEntry
	mu      sync.Mutex
}

// Ensure MockLogger implements domain.Logger.
var _ domain.Logger = (*MockLogger)(nil)

func (m *MockLogger) record(level string, taskID int, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, LogEntry{Level: level, TaskID: taskID, Category: category, Msg: msg})
}

// Info records an info entry.
func (m *MockLogger) Info(taskID int, category, msg string) {
	m.record("INFO", taskID, category, msg)
}

// Debug records a debug entry.
func (m *MockLogger) Debug(taskID int, category, msg string) {
	m.record("DEBUG", taskID, category, msg)
}

// Warn records a warn entry.
func (m *MockLogger) Warn(taskID int, category, msg string) {
	m.record("WARN", taskID, category, msg)
}

// Error records an error entry.
func (m *MockLogger) Error(taskID int, category, msg string) {
	m.record("ERROR", taskID, category, msg)
}

// Levels returns the recorded entries filtered by level.
func (m *MockLogger) Levels(level string) []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []LogEntry
	for _, e := range m.Entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Config *domain.Config
	Err    error
}

// Load returns the configured config or error.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Config == nil {
		return domain.NewDefaultConfig(), nil
	}
	return m.Config, nil
}

// LoadGlobal returns the configured config or error.
func (m *MockConfigLoader) LoadGlobal() (*domain.Config, error) {
	return m.Load()
}

// MockConfigManager is a test double for domain.ConfigManager.
// Fields are ordered to minimize memory padding.
type MockConfigManager struct {
	InitRepoErr      error
	InitGlobalErr    error
	RepoInfo         domain.ConfigInfo
	GlobalInfo       domain.ConfigInfo
	InitRepoCalled   bool
	InitGlobalCalled bool
}

// GetRepoConfigInfo returns the configured repo info.
func (m *MockConfigManager) GetRepoConfigInfo() domain.ConfigInfo {
	return m.RepoInfo
}

// GetGlobalConfigInfo returns the configured global info.
func (m *MockConfigManager) GetGlobalConfigInfo() domain.ConfigInfo {
	return m.GlobalInfo
}

// InitRepoConfig records the call.
func (m *MockConfigManager) InitRepoConfig() error {
	m.InitRepoCalled = true
	return m.InitRepoErr
}

// InitGlobalConfig records the call.
func (m *MockConfigManager) InitGlobalConfig() error {
	m.InitGlobalCalled = true
	return m.InitGlobalErr
}

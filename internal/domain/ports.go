package domain

import (
	"context"
	"time"
)

// StoreInitializer initializes the data store.
type StoreInitializer interface {
	// Initialize creates the store if it doesn't exist.
	// Returns ErrAlreadyInitialized if the store is already present.
	Initialize() error
}

// TaskRepository manages task persistence.
type TaskRepository interface {
	// Get retrieves a task by ID. Returns nil if not found.
	Get(id int) (*Task, error)

	// List retrieves all tasks ordered by ID.
	List() ([]*Task, error)

	// Save creates or updates a task.
	Save(task *Task) error

	// Delete removes a task by ID together with every edge that references it.
	Delete(id int) error

	// NextID returns the next available task ID.
	NextID() (int, error)
}

// DependencyRepository manages dependency edges and the derived earliest-start field.
type DependencyRepository interface {
	// ListEdges returns every edge ordered by dependent then required ID.
	ListEdges() ([]Edge, error)

	// CreateEdge stores the edge. Storing an existing edge is a no-op.
	CreateEdge(dependentID, requiredID int) error

	// DeleteEdge removes the edge. Removing a missing edge is a no-op.
	DeleteEdge(dependentID, requiredID int) error

	// UpdateEarliestStart records the derived earliest start of a task.
	UpdateEarliestStart(taskID int, at time.Time) error
}

// EarliestStartBatcher is implemented by stores that can write many
// earliest-start values in a single transaction.
type EarliestStartBatcher interface {
	UpdateEarliestStarts(starts map[int]time.Time) error
}

// GraphStore holds the tasks and edges the dependency engine works on.
type GraphStore interface {
	TaskRepository
	DependencyRepository
}

// Transactor is implemented by stores that can hold their lock across
// several calls, including against other planr processes.
type Transactor interface {
	// View runs fn against a consistent read-only view of the store.
	View(fn func(tx GraphStore) error) error

	// Update runs fn with exclusive access. The writes fn makes through tx
	// are committed only when fn returns nil.
	Update(fn func(tx GraphStore) error) error
}

// Store is the full storage collaborator used by the application.
type Store interface {
	GraphStore
	StoreInitializer
}

// Logger writes application logs.
// taskID 0 means the entry is not tied to a task.
type Logger interface {
	Info(taskID int, category, msg string)
	Debug(taskID int, category, msg string)
	Warn(taskID int, category, msg string)
	Error(taskID int, category, msg string)
}

// NopLogger discards every entry.
type NopLogger struct{}

// Info discards the entry.
func (NopLogger) Info(int, string, string) {}

// Debug discards the entry.
func (NopLogger) Debug(int, string, string) {}

// Warn discards the entry.
func (NopLogger) Warn(int, string, string) {}

// Error discards the entry.
func (NopLogger) Error(int, string, string) {}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (global + repo).
	Load() (*Config, error)

	// LoadGlobal returns only the global configuration.
	LoadGlobal() (*Config, error)
}

// ConfigInfo describes a config file on disk.
type ConfigInfo struct {
	Path    string
	Content string
	Exists  bool
}

// ConfigManager manages configuration files.
type ConfigManager interface {
	// GetRepoConfigInfo returns information about the repository config file.
	GetRepoConfigInfo() ConfigInfo

	// GetGlobalConfigInfo returns information about the global config file.
	GetGlobalConfigInfo() ConfigInfo

	// InitRepoConfig writes the default template to the repository config path.
	InitRepoConfig() error

	// InitGlobalConfig writes the default template to the global config path.
	InitGlobalConfig() error
}

// Graph output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// GraphRenderer draws the dependency graph, highlighting the critical path.
type GraphRenderer interface {
	Render(ctx context.Context, snap *Snapshot, critical []int, format string) ([]byte, error)
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Package jsonstore provides a JSON file-based implementation of domain.Store.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/infra/filelock"
)

// storeData represents the JSON file structure.
// Fields are ordered to minimize memory padding.
type storeData struct {
	Tasks        map[string]*taskData `json:"tasks"`
	Dependencies []domain.Edge        `json:"dependencies"`
	Meta         meta                 `json:"meta"`
}

// meta contains store metadata.
type meta struct {
	NextTaskID int `json:"nextTaskID"`
}

// taskData is the JSON representation of a task (without ID, which is the map key).
type taskData = domain.Task

// Store implements domain.Store using a single JSON file guarded by flock.
type Store struct {
	path     string
	lockPath string
}

// New creates a new Store for the given file path.
// The file is created by Initialize.
func New(path string) *Store {
	return &Store{
		path:     path,
		lockPath: path + ".lock",
	}
}

// Ensure Store implements the storage ports.
var (
	_ domain.Store                = (*Store)(nil)
	_ domain.EarliestStartBatcher = (*Store)(nil)
	_ domain.Transactor           = (*Store)(nil)
	_ domain.EarliestStartBatcher = (*tx)(nil)
)

// Get retrieves a task by ID. Returns nil if not found.
func (s *Store) Get(id int) (*domain.Task, error) {
	var task *domain.Task
	err := s.withLock(func(data *storeData) error {
		task = data.get(id)
		return nil
	})
	return task, err
}

// List retrieves all tasks ordered by ID.
func (s *Store) List() ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := s.withLock(func(data *storeData) error {
		var err error
		tasks, err = data.list()
		return err
	})
	return tasks, err
}

// Save creates or updates a task.
func (s *Store) Save(task *domain.Task) error {
	return s.withLockWrite(func(data *storeData) error {
		data.save(task)
		return nil
	})
}

// Delete removes a task and every dependency that references it.
func (s *Store) Delete(id int) error {
	return s.withLockWrite(func(data *storeData) error {
		data.remove(id)
		return nil
	})
}

// NextID returns the next available task ID.
func (s *Store) NextID() (int, error) {
	var id int
	err := s.withLockWrite(func(data *storeData) error {
		id = data.nextID()
		return nil
	})
	return id, err
}

// ListEdges returns every dependency ordered by dependent then required ID.
func (s *Store) ListEdges() ([]domain.Edge, error) {
	var edges []domain.Edge
	err := s.withLock(func(data *storeData) error {
		edges = data.edges()
		return nil
	})
	return edges, err
}

// CreateEdge stores a dependency. Storing an existing one is a no-op.
func (s *Store) CreateEdge(dependentID, requiredID int) error {
	return s.withLockWrite(func(data *storeData) error {
		data.addEdge(domain.Edge{DependentID: dependentID, RequiredID: requiredID})
		return nil
	})
}

// DeleteEdge removes a dependency if present.
func (s *Store) DeleteEdge(dependentID, requiredID int) error {
	return s.withLockWrite(func(data *storeData) error {
		data.removeEdge(domain.Edge{DependentID: dependentID, RequiredID: requiredID})
		return nil
	})
}

// UpdateEarliestStart sets the derived earliest start of one task.
func (s *Store) UpdateEarliestStart(taskID int, at time.Time) error {
	return s.UpdateEarliestStarts(map[int]time.Time{taskID: at})
}

// UpdateEarliestStarts sets many earliest starts in one locked write.
func (s *Store) UpdateEarliestStarts(starts map[int]time.Time) error {
	return s.withLockWrite(func(data *storeData) error {
		return data.setStarts(starts)
	})
}

// View runs fn over one read of the file under the shared lock.
func (s *Store) View(fn func(domain.GraphStore) error) error {
	return s.withLock(func(data *storeData) error {
		return fn(&tx{data: data, readOnly: true})
	})
}

// Update runs fn under the exclusive lock. Writes made through the
// transaction change an in-memory copy that is written back once, and only
// when fn succeeds.
func (s *Store) Update(fn func(domain.GraphStore) error) error {
	return s.withLockWrite(func(data *storeData) error {
		return fn(&tx{data: data})
	})
}

// Initialize creates an empty store file.
// Returns domain.ErrAlreadyInitialized if the file exists.
func (s *Store) Initialize() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return domain.ErrAlreadyInitialized
	}

	data := &storeData{
		Meta:         meta{NextTaskID: 1},
		Tasks:        make(map[string]*taskData),
		Dependencies: []domain.Edge{},
	}

	return s.write(data)
}

// withLock executes fn with a shared (read) lock.
func (s *Store) withLock(fn func(*storeData) error) error {
	lock, err := filelock.Acquire(s.lockPath, false)
	if err != nil {
		return err
	}
	defer lock.Release()

	data, err := s.read()
	if err != nil {
		return err
	}

	return fn(data)
}

// withLockWrite executes fn with an exclusive (write) lock and writes the result.
// Nothing is written if fn fails.
func (s *Store) withLockWrite(fn func(*storeData) error) error {
	lock, err := filelock.Acquire(s.lockPath, true)
	if err != nil {
		return err
	}
	defer lock.Release()

	data, err := s.read()
	if err != nil {
		return err
	}

	if err := fn(data); err != nil {
		return err
	}

	return s.write(data)
}

func (s *Store) read() (*storeData, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotInitialized
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var data storeData
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}

	if data.Tasks == nil {
		data.Tasks = make(map[string]*taskData)
	}
	if data.Dependencies == nil {
		data.Dependencies = []domain.Edge{}
	}

	return &data, nil
}

func (s *Store) write(data *storeData) error {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store data: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

func (d *storeData) get(id int) *domain.Task {
	t, ok := d.Tasks[strconv.Itoa(id)]
	if !ok {
		return nil
	}
	t = t.Clone()
	t.ID = id
	return t
}

func (d *storeData) list() ([]*domain.Task, error) {
	tasks := make([]*domain.Task, 0, len(d.Tasks))
	for key, t := range d.Tasks {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("invalid task key %q: %w", key, err)
		}
		t = t.Clone()
		t.ID = id
		tasks = append(tasks, t)
	}
	slices.SortFunc(tasks, func(a, b *domain.Task) int {
		return a.ID - b.ID
	})
	return tasks, nil
}

func (d *storeData) save(task *domain.Task) {
	d.Tasks[strconv.Itoa(task.ID)] = task.Clone()
}

func (d *storeData) remove(id int) {
	delete(d.Tasks, strconv.Itoa(id))
	d.Dependencies = slices.DeleteFunc(d.Dependencies, func(e domain.Edge) bool {
		return e.Touches(id)
	})
}

func (d *storeData) nextID() int {
	id := d.Meta.NextTaskID
	d.Meta.NextTaskID++
	return id
}

func (d *storeData) edges() []domain.Edge {
	edges := slices.Clone(d.Dependencies)
	slices.SortFunc(edges, domain.CompareEdges)
	return edges
}

func (d *storeData) addEdge(edge domain.Edge) {
	if slices.Contains(d.Dependencies, edge) {
		return
	}
	d.Dependencies = append(d.Dependencies, edge)
	slices.SortFunc(d.Dependencies, domain.CompareEdges)
}

func (d *storeData) removeEdge(edge domain.Edge) {
	d.Dependencies = slices.DeleteFunc(d.Dependencies, func(e domain.Edge) bool {
		return e == edge
	})
}

func (d *storeData) setStarts(starts map[int]time.Time) error {
	for id, at := range starts {
		t, ok := d.Tasks[strconv.Itoa(id)]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, domain.TaskRefName(id))
		}
		t.EarliestStart = &at
	}
	return nil
}

// tx is the store as seen inside View or Update: one locked read of the
// file. Writes in a View fail with domain.ErrReadOnly.
type tx struct {
	data     *storeData
	readOnly bool
}

func (t *tx) writable() error {
	if t.readOnly {
		return domain.ErrReadOnly
	}
	return nil
}

func (t *tx) Get(id int) (*domain.Task, error) { return t.data.get(id), nil }

func (t *tx) List() ([]*domain.Task, error) { return t.data.list() }

func (t *tx) ListEdges() ([]domain.Edge, error) { return t.data.edges(), nil }

func (t *tx) Save(task *domain.Task) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.data.save(task)
	return nil
}

func (t *tx) Delete(id int) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.data.remove(id)
	return nil
}

func (t *tx) NextID() (int, error) {
	if err := t.writable(); err != nil {
		return 0, err
	}
	return t.data.nextID(), nil
}

func (t *tx) CreateEdge(dependentID, requiredID int) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.data.addEdge(domain.Edge{DependentID: dependentID, RequiredID: requiredID})
	return nil
}

func (t *tx) DeleteEdge(dependentID, requiredID int) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.data.removeEdge(domain.Edge{DependentID: dependentID, RequiredID: requiredID})
	return nil
}

func (t *tx) UpdateEarliestStart(taskID int, at time.Time) error {
	return t.UpdateEarliestStarts(map[int]time.Time{taskID: at})
}

func (t *tx) UpdateEarliestStarts(starts map[int]time.Time) error {
	if err := t.writable(); err != nil {
		return err
	}
	return t.data.setStarts(starts)
}

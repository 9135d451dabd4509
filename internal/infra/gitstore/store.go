// Package gitstore provides a Git plumbing-based implementation of domain.Store.
package gitstore

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"gopkg.in/yaml.v3"

	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/infra/crypto"
)

// Store implements domain.Store using Git plumbing (refs and blobs).
// Nothing is written to the working tree or to any branch.
//
// Data structure:
//
//	refs/<namespace>/
//	  meta         → blob (nextTaskID)
//	  initialized  → blob (marker)
//	  tasks/
//	    <id>       → blob (task YAML)
//	  deps/
//	    <id>       → blob (IDs the task requires, YAML)
//
// With a sealer every blob is encrypted before it is written.
//
// Update buffers ref changes and applies them only when its function
// succeeds; View and Update also hold a flock in the git directory so other
// planr processes are excluded.
type Store struct {
	repo      *git.Repository
	sealer    *crypto.Sealer                           // nil = plain YAML blobs
	pending   map[plumbing.ReferenceName]plumbing.Hash // ref changes buffered by Update; ZeroHash = removed
	namespace string                                   // e.g., "planr"
	mu        sync.RWMutex
}

// meta contains store metadata.
type meta struct {
	NextTaskID int `yaml:"nextTaskID"`
}

// depsData lists the tasks one task requires.
type depsData struct {
	Requires []int `yaml:"requires"`
}

// New opens the repository at repoPath. A nil sealer stores plain blobs.
func New(repoPath, namespace string, sealer *crypto.Sealer) (*Store, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open git repository: %w", err)
	}
	return NewWithRepoAndSealer(repo, namespace, sealer), nil
}

// NewWithRepo creates a new Store with an existing repository instance.
func NewWithRepo(repo *git.Repository, namespace string) *Store {
	return NewWithRepoAndSealer(repo, namespace, nil)
}

// NewWithRepoAndSealer creates a new Store with an existing repository and sealer.
func NewWithRepoAndSealer(repo *git.Repository, namespace string, sealer *crypto.Sealer) *Store {
	if namespace == "" {
		namespace = domain.DefaultNamespace
	}
	return &Store{
		repo:      repo,
		namespace: namespace,
		sealer:    sealer,
	}
}

// Ensure Store implements the storage ports.
var (
	_ domain.Store                = (*Store)(nil)
	_ domain.EarliestStartBatcher = (*Store)(nil)
	_ domain.Transactor           = (*Store)(nil)
	_ domain.EarliestStartBatcher = (*tx)(nil)
)

// refPrefix returns the ref prefix for this namespace.
func (s *Store) refPrefix() string {
	return "refs/" + s.namespace + "/"
}

// taskRef returns the ref name for a task.
func (s *Store) taskRef(id int) plumbing.ReferenceName {
	return plumbing.ReferenceName(s.refPrefix() + "tasks/" + strconv.Itoa(id))
}

// depsRef returns the ref name for the dependencies of a task.
func (s *Store) depsRef(id int) plumbing.ReferenceName {
	return plumbing.ReferenceName(s.refPrefix() + "deps/" + strconv.Itoa(id))
}

// metaRef returns the ref name for metadata.
func (s *Store) metaRef() plumbing.ReferenceName {
	return plumbing.ReferenceName(s.refPrefix() + "meta")
}

// initializedRef returns the ref name for the initialized marker.
func (s *Store) initializedRef() plumbing.ReferenceName {
	return plumbing.ReferenceName(s.refPrefix() + "initialized")
}

// Get retrieves a task by ID. Returns nil if not found.
func (s *Store) Get(id int) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getLocked(id)
}

func (s *Store) getLocked(id int) (*domain.Task, error) {
	var task domain.Task
	found, err := s.readYAML(s.taskRef(id), &task)
	if err != nil {
		return nil, fmt.Errorf("read task: %w", err)
	}
	if !found {
		return nil, nil
	}
	task.ID = id
	return &task, nil
}

// List retrieves all tasks ordered by ID.
func (s *Store) List() ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listLocked()
}

func (s *Store) listLocked() ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := s.forEachID("tasks/", func(id int, hash plumbing.Hash) error {
		data, err := s.readBlob(hash)
		if err != nil {
			return fmt.Errorf("read task: %w", err)
		}
		var task domain.Task
		if err := yaml.Unmarshal(data, &task); err != nil {
			return fmt.Errorf("decode task: %w", err)
		}
		task.ID = id
		tasks = append(tasks, &task)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(tasks, func(a, b *domain.Task) int {
		return a.ID - b.ID
	})
	return tasks, nil
}

// Save creates or updates a task.
func (s *Store) Save(task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveLocked(task)
}

func (s *Store) saveLocked(task *domain.Task) error {
	if err := s.writeYAML(s.taskRef(task.ID), task); err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// Delete removes a task, its own dependency list, and its ID from every
// other task's dependency list.
func (s *Store) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteLocked(id)
}

func (s *Store) deleteLocked(id int) error {
	if err := s.removeRef(s.taskRef(id)); err != nil {
		return fmt.Errorf("remove task ref: %w", err)
	}
	if err := s.removeRef(s.depsRef(id)); err != nil {
		return fmt.Errorf("remove deps ref: %w", err)
	}

	all, err := s.allDepsLocked()
	if err != nil {
		return err
	}
	for dependent, reqs := range all {
		if !slices.Contains(reqs, id) {
			continue
		}
		reqs = slices.DeleteFunc(reqs, func(r int) bool { return r == id })
		if err := s.writeDepsLocked(dependent, reqs); err != nil {
			return err
		}
	}
	return nil
}

// NextID returns the next available task ID.
func (s *Store) NextID() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.nextIDLocked()
}

func (s *Store) nextIDLocked() (int, error) {
	m, err := s.loadMeta()
	if err != nil {
		return 0, err
	}

	id := m.NextTaskID
	m.NextTaskID++

	if err := s.saveMeta(m); err != nil {
		return 0, err
	}

	return id, nil
}

// ListEdges returns every dependency ordered by dependent then required ID.
func (s *Store) ListEdges() ([]domain.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listEdgesLocked()
}

func (s *Store) listEdgesLocked() ([]domain.Edge, error) {
	all, err := s.allDepsLocked()
	if err != nil {
		return nil, err
	}

	var edges []domain.Edge
	for dependent, reqs := range all {
		for _, req := range reqs {
			edges = append(edges, domain.Edge{DependentID: dependent, RequiredID: req})
		}
	}
	slices.SortFunc(edges, domain.CompareEdges)
	return edges, nil
}

// CreateEdge stores a dependency. Storing an existing one is a no-op.
func (s *Store) CreateEdge(dependentID, requiredID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.createEdgeLocked(dependentID, requiredID)
}

func (s *Store) createEdgeLocked(dependentID, requiredID int) error {
	reqs, err := s.depsLocked(dependentID)
	if err != nil {
		return err
	}
	if slices.Contains(reqs, requiredID) {
		return nil
	}
	return s.writeDepsLocked(dependentID, append(reqs, requiredID))
}

// DeleteEdge removes a dependency if present.
func (s *Store) DeleteEdge(dependentID, requiredID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteEdgeLocked(dependentID, requiredID)
}

func (s *Store) deleteEdgeLocked(dependentID, requiredID int) error {
	reqs, err := s.depsLocked(dependentID)
	if err != nil {
		return err
	}
	if !slices.Contains(reqs, requiredID) {
		return nil
	}
	reqs = slices.DeleteFunc(reqs, func(r int) bool { return r == requiredID })
	return s.writeDepsLocked(dependentID, reqs)
}

// UpdateEarliestStart sets the derived earliest start of one task.
func (s *Store) UpdateEarliestStart(taskID int, at time.Time) error {
	return s.UpdateEarliestStarts(map[int]time.Time{taskID: at})
}

// UpdateEarliestStarts sets many earliest starts under one lock.
// Tasks whose stored value already matches are not rewritten.
func (s *Store) UpdateEarliestStarts(starts map[int]time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateStartsLocked(starts)
}

func (s *Store) updateStartsLocked(starts map[int]time.Time) error {
	for id, at := range starts {
		task, err := s.getLocked(id)
		if err != nil {
			return err
		}
		if task == nil {
			return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, domain.TaskRefName(id))
		}
		if task.EarliestStart != nil && task.EarliestStart.Equal(at) {
			continue
		}
		task.EarliestStart = &at
		if err := s.saveLocked(task); err != nil {
			return err
		}
	}
	return nil
}

// Initialize writes the initialized marker and metadata.
// Returns domain.ErrAlreadyInitialized if the marker exists.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.repo.Reference(s.initializedRef(), true)
	if err == nil {
		return domain.ErrAlreadyInitialized
	}
	if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return fmt.Errorf("check initialized ref: %w", err)
	}

	m, err := s.loadMeta()
	if err != nil {
		return fmt.Errorf("load meta: %w", err)
	}
	if err := s.saveMeta(m); err != nil {
		return err
	}

	hash, err := s.writeBlob([]byte("initialized"))
	if err != nil {
		return err
	}
	ref := plumbing.NewHashReference(s.initializedRef(), hash)
	if err := s.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("set initialized ref: %w", err)
	}
	return nil
}

// IsInitialized reports whether the initialized marker exists.
func (s *Store) IsInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := s.repo.Reference(s.initializedRef(), true)
	return err == nil
}

// depsLocked returns the IDs a task requires.
func (s *Store) depsLocked(id int) ([]int, error) {
	var d depsData
	if _, err := s.readYAML(s.depsRef(id), &d); err != nil {
		return nil, fmt.Errorf("read deps: %w", err)
	}
	return d.Requires, nil
}

// allDepsLocked returns every dependency list keyed by dependent ID.
func (s *Store) allDepsLocked() (map[int][]int, error) {
	all := make(map[int][]int)
	err := s.forEachID("deps/", func(id int, hash plumbing.Hash) error {
		data, err := s.readBlob(hash)
		if err != nil {
			return fmt.Errorf("read deps: %w", err)
		}
		var d depsData
		if err := yaml.Unmarshal(data, &d); err != nil {
			return fmt.Errorf("decode deps: %w", err)
		}
		if len(d.Requires) > 0 {
			all[id] = d.Requires
		}
		return nil
	})
	return all, err
}

// writeDepsLocked stores a dependency list, removing the ref when it is empty.
func (s *Store) writeDepsLocked(id int, reqs []int) error {
	if len(reqs) == 0 {
		if err := s.removeRef(s.depsRef(id)); err != nil {
			return fmt.Errorf("remove deps ref: %w", err)
		}
		return nil
	}
	slices.Sort(reqs)
	if err := s.writeYAML(s.depsRef(id), depsData{Requires: reqs}); err != nil {
		return fmt.Errorf("save deps: %w", err)
	}
	return nil
}

// forEachID calls fn for every ref under refs/<namespace>/<kind> whose
// last segment is a task ID, including changes buffered by Update.
// Other refs are skipped.
func (s *Store) forEachID(kind string, fn func(id int, hash plumbing.Hash) error) error {
	prefix := s.refPrefix() + kind
	idOf := func(name plumbing.ReferenceName) (int, bool) {
		if !strings.HasPrefix(name.String(), prefix) {
			return 0, false
		}
		id, err := strconv.Atoi(strings.TrimPrefix(name.String(), prefix))
		return id, err == nil
	}

	refs, err := s.repo.References()
	if err != nil {
		return fmt.Errorf("list refs: %w", err)
	}
	defer refs.Close()

	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if _, buffered := s.pending[ref.Name()]; buffered {
			return nil
		}
		if id, ok := idOf(ref.Name()); ok {
			return fn(id, ref.Hash())
		}
		return nil
	})
	if errors.Is(err, storer.ErrStop) {
		return nil
	}
	if err != nil {
		return err
	}

	for name, hash := range s.pending {
		if hash.IsZero() {
			continue
		}
		if id, ok := idOf(name); ok {
			if err := fn(id, hash); err != nil {
				return err
			}
		}
	}
	return nil
}

// loadMeta loads metadata from the meta ref.
// If the meta ref doesn't exist, it calculates NextTaskID from existing tasks.
func (s *Store) loadMeta() (*meta, error) {
	var m meta
	found, err := s.readYAML(s.metaRef(), &m)
	if err != nil {
		return nil, fmt.Errorf("read meta: %w", err)
	}
	if !found {
		return &meta{NextTaskID: s.calculateNextTaskID()}, nil
	}
	return &m, nil
}

// calculateNextTaskID finds the maximum task ID from existing tasks and returns max+1.
func (s *Store) calculateNextTaskID() int {
	maxID := 0
	_ = s.forEachID("tasks/", func(id int, _ plumbing.Hash) error {
		maxID = max(maxID, id)
		return nil
	})
	return maxID + 1
}

// saveMeta saves metadata to the meta ref.
func (s *Store) saveMeta(m *meta) error {
	if err := s.writeYAML(s.metaRef(), m); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	return nil
}

// readYAML decodes the blob behind name into v.
// It reports false when the ref does not exist.
func (s *Store) readYAML(name plumbing.ReferenceName, v any) (bool, error) {
	hash, found, err := s.resolve(name)
	if err != nil || !found {
		return false, err
	}

	data, err := s.readBlob(hash)
	if err != nil {
		return false, err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", name, err)
	}
	return true, nil
}

// writeYAML encodes v into a new blob and points name at it.
func (s *Store) writeYAML(name plumbing.ReferenceName, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	hash, err := s.writeBlob(data)
	if err != nil {
		return err
	}

	if s.pending != nil {
		s.pending[name] = hash
		return nil
	}
	if err := s.repo.Storer.SetReference(plumbing.NewHashReference(name, hash)); err != nil {
		return fmt.Errorf("set ref %s: %w", name, err)
	}
	return nil
}

func (s *Store) removeRef(name plumbing.ReferenceName) error {
	if s.pending != nil {
		s.pending[name] = plumbing.ZeroHash
		return nil
	}
	err := s.repo.Storer.RemoveReference(name)
	if err != nil && !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return err
	}
	return nil
}

// resolve returns the blob name points at, seeing changes buffered by Update.
func (s *Store) resolve(name plumbing.ReferenceName) (plumbing.Hash, bool, error) {
	if hash, ok := s.pending[name]; ok {
		return hash, !hash.IsZero(), nil
	}
	ref, err := s.repo.Reference(name, true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return plumbing.ZeroHash, false, nil
		}
		return plumbing.ZeroHash, false, fmt.Errorf("get ref %s: %w", name, err)
	}
	return ref.Hash(), true, nil
}

// writeBlob writes data to a blob and returns the hash.
// Data is sealed first when the store has a sealer.
func (s *Store) writeBlob(data []byte) (plumbing.Hash, error) {
	if s.sealer != nil {
		data = s.sealer.Seal(data)
	}

	obj := s.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("create blob writer: %w", err)
	}

	if _, writeErr := writer.Write(data); writeErr != nil {
		_ = writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", writeErr)
	}
	_ = writer.Close()

	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store blob: %w", err)
	}

	return hash, nil
}

// readBlob reads the contents of a blob.
func (s *Store) readBlob(hash plumbing.Hash) ([]byte, error) {
	blob, err := s.repo.BlobObject(hash)
	if err != nil {
		return nil, fmt.Errorf("get blob: %w", err)
	}

	reader, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read blob data: %w", err)
	}

	if s.sealer != nil {
		plain, err := s.sealer.Open(data)
		if err != nil {
			return nil, fmt.Errorf("open blob %s: %w", hash.String()[:7], err)
		}
		return plain, nil
	}
	if crypto.IsSealed(data) {
		return nil, fmt.Errorf("blob %s: %w", hash.String()[:7], domain.ErrStoreKeyMissing)
	}
	return data, nil
}

package gitstore

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/infra/filelock"
)

// View runs fn over the refs under a shared lock.
func (s *Store) View(fn func(domain.GraphStore) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lock, err := s.lockFile(false)
	if err != nil {
		return err
	}
	defer lock.Release()

	return fn(&tx{s: s, readOnly: true})
}

// Update runs fn under an exclusive lock. Blobs are written as fn runs, but
// ref changes are buffered and applied together only when fn succeeds.
func (s *Store) Update(fn func(domain.GraphStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, err := s.lockFile(true)
	if err != nil {
		return err
	}
	defer lock.Release()

	s.pending = make(map[plumbing.ReferenceName]plumbing.Hash)
	defer func() { s.pending = nil }()

	if err := fn(&tx{s: s}); err != nil {
		return err
	}
	return s.flushLocked()
}

// flushLocked applies the ref changes buffered by Update.
func (s *Store) flushLocked() error {
	changes := s.pending
	s.pending = nil
	for name, hash := range changes {
		if err := s.applyRef(name, hash); err != nil {
			return fmt.Errorf("commit %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) applyRef(name plumbing.ReferenceName, hash plumbing.Hash) error {
	if hash.IsZero() {
		return s.removeRef(name)
	}
	return s.repo.Storer.SetReference(plumbing.NewHashReference(name, hash))
}

// lockFile locks planr-<namespace>.lock inside the git directory. Repositories
// not stored on disk have no other processes to exclude.
func (s *Store) lockFile(exclusive bool) (*filelock.Lock, error) {
	fs, ok := s.repo.Storer.(*filesystem.Storage)
	if !ok {
		return nil, nil
	}
	name := "planr-" + strings.ReplaceAll(s.namespace, "/", "-") + ".lock"
	return filelock.Acquire(filepath.Join(fs.Filesystem().Root(), name), exclusive)
}

// tx is the store as seen inside View or Update. The caller holds s.mu.
type tx struct {
	s        *Store
	readOnly bool
}

func (t *tx) writable() error {
	if t.readOnly {
		return domain.ErrReadOnly
	}
	return nil
}

func (t *tx) Get(id int) (*domain.Task, error) { return t.s.getLocked(id) }

func (t *tx) List() ([]*domain.Task, error) { return t.s.listLocked() }

func (t *tx) ListEdges() ([]domain.Edge, error) { return t.s.listEdgesLocked() }

func (t *tx) Save(task *domain.Task) error {
	if err := t.writable(); err != nil {
		return err
	}
	return t.s.saveLocked(task)
}

func (t *tx) Delete(id int) error {
	if err := t.writable(); err != nil {
		return err
	}
	return t.s.deleteLocked(id)
}

func (t *tx) NextID() (int, error) {
	if err := t.writable(); err != nil {
		return 0, err
	}
	return t.s.nextIDLocked()
}

func (t *tx) CreateEdge(dependentID, requiredID int) error {
	if err := t.writable(); err != nil {
		return err
	}
	return t.s.createEdgeLocked(dependentID, requiredID)
}

func (t *tx) DeleteEdge(dependentID, requiredID int) error {
	if err := t.writable(); err != nil {
		return err
	}
	return t.s.deleteEdgeLocked(dependentID, requiredID)
}

func (t *tx) UpdateEarliestStart(taskID int, at time.Time) error {
	return t.UpdateEarliestStarts(map[int]time.Time{taskID: at})
}

func (t *tx) UpdateEarliestStarts(starts map[int]time.Time) error {
	if err := t.writable(); err != nil {
		return err
	}
	return t.s.updateStartsLocked(starts)
}

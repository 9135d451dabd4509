package domain

import "errors"

// Domain errors.
var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrDuplicateTask        = errors.New("task already exists")
	ErrEmptyTitle           = errors.New("title cannot be empty")
	ErrNegativeDuration     = errors.New("estimated duration cannot be negative")
	ErrSelfDependency       = errors.New("a task cannot depend on itself")
	ErrDuplicateDependency  = errors.New("dependency already exists")
	ErrCyclicDependency     = errors.New("dependency would create a cycle")
	ErrCycleDetected        = errors.New("dependency graph contains a cycle")
	ErrInternalConsistency  = errors.New("internal consistency fault")
	ErrNoFieldsToUpdate     = errors.New("no fields to update")
	ErrAlreadyInitialized   = errors.New("planr already initialized")
	ErrNotInitialized       = errors.New("planr not initialized (run 'planr init' first)")
	ErrConfigExists         = errors.New("config file already exists")
	ErrEmptyFile            = errors.New("file is empty")
	ErrNoTasksInFile        = errors.New("no tasks found in file")
	ErrInvalidTaskReference = errors.New("invalid task reference")
	ErrUnknownStore         = errors.New("unknown store type")
	ErrUnknownFormat        = errors.New("unknown output format")
	ErrReadOnly             = errors.New("write in a read-only view of the store")
	ErrStoreKeyMissing      = errors.New("task store is encrypted (set " + StoreKeyEnv + ")")
	ErrInvalidDueDate       = errors.New("invalid due date (use YYYY-MM-DD, YYYY-MM-DD HH:MM or RFC 3339)")
)

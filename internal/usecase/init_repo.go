// Package usecase contains the application use cases.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/runoshun/planr/internal/domain"
)

// InitRepoInput contains the input parameters for InitRepo.
type InitRepoInput struct {
	DataDir     string // Path to the .planr directory
	ProjectRoot string // Project root (for the .gitignore check; optional)
}

// InitRepoOutput contains the output from InitRepo.
type InitRepoOutput struct {
	DataDir            string // Path to the data directory
	AlreadyInitialized bool   // True if the store already existed
	GitignoreNeedsAdd  bool   // True if .planr/ is not in .gitignore
}

// InitRepo initializes a project for planr.
type InitRepo struct {
	storeInit domain.StoreInitializer
}

// NewInitRepo creates a new InitRepo use case.
func NewInitRepo(storeInit domain.StoreInitializer) *InitRepo {
	return &InitRepo{storeInit: storeInit}
}

// Execute creates the data and logs directories and an empty task store.
// Running it again on an initialized project is not an error.
func (uc *InitRepo) Execute(_ context.Context, in InitRepoInput) (*InitRepoOutput, error) {
	if err := os.MkdirAll(domain.LogsDir(in.DataDir), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}

	already := false
	if err := uc.storeInit.Initialize(); err != nil {
		if !errors.Is(err, domain.ErrAlreadyInitialized) {
			return nil, fmt.Errorf("initialize task store: %w", err)
		}
		already = true
	}

	out := &InitRepoOutput{
		DataDir:            in.DataDir,
		AlreadyInitialized: already,
	}
	if !already && in.ProjectRoot != "" {
		out.GitignoreNeedsAdd = !isDataDirIgnored(in.ProjectRoot)
	}
	return out, nil
}

// isDataDirIgnored checks if .planr/ is listed in the project's .gitignore.
func isDataDirIgnored(root string) bool {
	content, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == domain.DataDirName || line == domain.DataDirName+"/" {
			return true
		}
	}
	return false
}

package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/planr/internal/domain"
)

const importYAML = `tasks:
  - title: Schema
    duration: 90
  - title: Migrations
    duration: 60
    requires: [1]
`

func writeImportFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewImportCommand(t *testing.T) {
	c, store := newTestContainer(t)

	out, err := execute(newImportCommand(c), writeImportFile(t, importYAML))

	require.NoError(t, err)
	assert.Contains(t, out, "Created task #1: Schema")
	assert.Contains(t, out, "Created task #2: Migrations")
	assert.Contains(t, out, "  #2 requires #1")
	assert.Contains(t, out, "Created 2 task(s), 1 dependencies")
	assert.True(t, store.HasEdge(2, 1))
	assert.Equal(t, testNow.Add(90*time.Minute), *store.Tasks[2].EarliestStart)
}

func TestNewImportCommand_DryRun(t *testing.T) {
	c, store := newTestContainer(t)

	out, err := execute(newImportCommand(c), writeImportFile(t, importYAML), "--dry-run")

	require.NoError(t, err)
	assert.Contains(t, out, "Dry run - tasks that would be created:")
	assert.Contains(t, out, "  1. Schema (1h30m)")
	assert.Contains(t, out, "  task 2 (in this file) requires task 1 (in this file)")
	assert.Empty(t, store.Tasks)
}

func TestNewImportCommand_Stdin(t *testing.T) {
	c, store := newTestContainer(t)
	seedTask(t, c, "Existing", 30)

	cmd := newImportCommand(c)
	cmd.SetIn(strings.NewReader("tasks:\n  - title: Follow-up\n    requires: [\"#1\"]\n"))
	out, err := execute(cmd, "-")

	require.NoError(t, err)
	assert.Contains(t, out, "Created task #2: Follow-up")
	assert.True(t, store.HasEdge(2, 1))
}

func TestNewImportCommand_CycleWritesNothing(t *testing.T) {
	c, store := newTestContainer(t)
	content := `tasks:
  - title: A
    requires: [2]
  - title: B
    requires: [1]
`

	_, err := execute(newImportCommand(c), writeImportFile(t, content))

	assert.ErrorIs(t, err, domain.ErrCyclicDependency)
	assert.Empty(t, store.Tasks)
	assert.Empty(t, store.Edges)
}

func TestNewImportCommand_MissingFile(t *testing.T) {
	c, _ := newTestContainer(t)

	_, err := execute(newImportCommand(c), filepath.Join(t.TempDir(), "missing.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read file")
}

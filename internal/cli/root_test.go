package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/planr/internal/app"
	"github.com/runoshun/planr/internal/domain"
)

func TestNewRootCommand_Commands(t *testing.T) {
	c, _ := newTestContainer(t)
	root := NewRootCommand(c, "1.2.3")

	for _, name := range []string{
		"init", "config", "new", "list", "show", "edit", "rm", "import",
		"dep", "critical-path", "recompute", "viz", "board",
	} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
		assert.NotEmpty(t, cmd.GroupID, name)
	}

	cmd, _, err := root.Find([]string{"cp"})
	require.NoError(t, err)
	assert.Equal(t, "critical-path", cmd.Name())
}

func TestNewRootCommand_Version(t *testing.T) {
	out, err := execute(NewRootCommand(nil, "1.2.3"), "--version")

	require.NoError(t, err)
	assert.Contains(t, out, "1.2.3")
}

func TestNewRootCommand_EndToEnd(t *testing.T) {
	c, store := newTestContainer(t)

	_, err := execute(NewRootCommand(c, "dev"), "new", "Schema", "-d", "90")
	require.NoError(t, err)
	_, err = execute(NewRootCommand(c, "dev"), "new", "Migrations", "-d", "60", "-r", "1")
	require.NoError(t, err)

	out, err := execute(NewRootCommand(c, "dev"), "cp")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 2h30m")
	assert.True(t, store.HasEdge(2, 1))
}

func TestNewRootCommand_Warnings(t *testing.T) {
	c, _ := newTestContainer(t)
	c.AppConfig.Warnings = []string{"unknown key: tasks.colour"}

	out, err := execute(NewRootCommand(c, "dev"), "list")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: unknown key: tasks.colour")
}

func TestNewInitCommand(t *testing.T) {
	c, store := newTestContainer(t)
	root := t.TempDir()
	c.Config = app.Config{ProjectRoot: root, DataDir: domain.RepoDataDir(root)}

	out, err := execute(newInitCommand(c))
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized planr in "+c.Config.DataDir)
	assert.Contains(t, out, "Hint: add .planr/ to .gitignore")
	assert.True(t, store.Initialized)
	assert.DirExists(t, domain.LogsDir(c.Config.DataDir))

	out, err = execute(newInitCommand(c))
	require.NoError(t, err)
	assert.Contains(t, out, "planr already initialized")
}

func TestNewInitCommand_Ignored(t *testing.T) {
	c, _ := newTestContainer(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("node_modules\n.planr/\n"), 0o600))
	c.Config = app.Config{ProjectRoot: root, DataDir: domain.RepoDataDir(root)}

	out, err := execute(newInitCommand(c))

	require.NoError(t, err)
	assert.NotContains(t, out, "Hint")
}

func TestNewBoardCommand(t *testing.T) {
	c, _ := newTestContainer(t)
	var got *app.Container
	orig := runBoard
	runBoard = func(_ context.Context, c *app.Container) error {
		got = c
		return nil
	}
	t.Cleanup(func() { runBoard = orig })

	_, err := execute(newBoardCommand(c))

	require.NoError(t, err)
	assert.Same(t, c, got)
}

func TestNewBoardCommand_Error(t *testing.T) {
	c, _ := newTestContainer(t)
	orig := runBoard
	runBoard = func(context.Context, *app.Container) error {
		return errors.New("no tty")
	}
	t.Cleanup(func() { runBoard = orig })

	_, err := execute(newBoardCommand(c), "extra")
	require.Error(t, err)

	_, err = execute(newBoardCommand(c))
	assert.EqualError(t, err, "no tty")
}

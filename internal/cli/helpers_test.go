package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/planr/internal/app"
	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/testutil"
)

var testNow = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

// newTestContainer creates an app.Container over an in-memory store.
func newTestContainer(t *testing.T) (*app.Container, *testutil.MockStore) {
	t.Helper()
	store := testutil.NewMockStore()
	c := app.NewWithDeps(app.Config{}, store, &testutil.MockClock{NowTime: testNow}, nil)
	return c, store
}

// seedTask creates a task through the engine. A negative duration leaves it unestimated.
func seedTask(t *testing.T, c *app.Container, title string, duration int) *domain.Task {
	t.Helper()
	task := &domain.Task{Title: title}
	if duration >= 0 {
		task.EstimatedDuration = domain.IntPtr(duration)
	}
	created, err := c.Engine.AddTask(context.Background(), task)
	require.NoError(t, err)
	return created
}

// seedDependency makes dependentID require requiredID.
func seedDependency(t *testing.T, c *app.Container, dependentID, requiredID int) {
	t.Helper()
	_, err := c.Engine.AddDependency(context.Background(), dependentID, requiredID)
	require.NoError(t, err)
}

// execute runs cmd with args and returns what it wrote to stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/planr/internal/app"
	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/testutil"
)

var testNow = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

// newTestModel builds a board over three tasks: #2 requires #1, #3 is independent.
func newTestModel(t *testing.T) (*Model, *testutil.MockStore) {
	t.Helper()
	store := testutil.NewMockStore()
	c := app.NewWithDeps(app.Config{}, store, &testutil.MockClock{NowTime: testNow}, nil)
	ctx := context.Background()

	for _, task := range []*domain.Task{
		{Title: "Design", Description: "Sketch the API", EstimatedDuration: domain.IntPtr(30)},
		{Title: "Build", EstimatedDuration: domain.IntPtr(60)},
		{Title: "Docs", EstimatedDuration: domain.IntPtr(10)},
	} {
		_, err := c.Engine.AddTask(ctx, task)
		require.NoError(t, err)
	}
	_, err := c.Engine.AddDependency(ctx, 2, 1)
	require.NoError(t, err)

	m := New(c)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	run(t, m, m.Init())
	return m, store
}

// run executes cmd synchronously and feeds its message back into the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	_, next := m.Update(cmd())
	if next != nil {
		if _, ok := next().(Msg); ok {
			run(t, m, next)
		}
	}
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func taskIDs(m *Model) []int {
	ids := make([]int, len(m.tasks))
	for i, task := range m.tasks {
		ids[i] = task.ID
	}
	return ids
}

func TestModel_Init_LoadsTasksByStart(t *testing.T) {
	m, _ := newTestModel(t)

	assert.Equal(t, []int{1, 3, 2}, taskIDs(m))
	require.NotNil(t, m.analysis)
	assert.Equal(t, 90, m.analysis.TotalDuration)
	require.NotNil(t, m.SelectedTask())
	assert.Equal(t, 1, m.SelectedTask().ID)
}

func TestModel_View(t *testing.T) {
	m, _ := newTestModel(t)

	view := m.View()
	assert.Contains(t, view, "planr board")
	assert.Contains(t, view, "3 tasks")
	assert.Contains(t, view, "critical path: 1h30m")
	assert.Contains(t, view, "Design")
	assert.Contains(t, view, "Sketch the API")
	assert.Contains(t, view, "#3")
	assert.Contains(t, view, "+1h20m")
}

func TestModel_View_Loading(t *testing.T) {
	m := New(app.NewWithDeps(app.Config{}, testutil.NewMockStore(), &testutil.MockClock{NowTime: testNow}, nil))
	assert.Equal(t, "Loading...", m.View())
}

func TestModel_ToggleCriticalOnly(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(keyPress("c"))
	assert.True(t, m.criticalOnly)
	run(t, m, cmd)
	assert.ElementsMatch(t, []int{1, 2}, taskIDs(m))
	assert.Contains(t, m.View(), "critical only")

	_, cmd = m.Update(keyPress("c"))
	run(t, m, cmd)
	assert.Len(t, m.tasks, 3)
}

func TestModel_CycleSort(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(keyPress("o"))
	assert.Equal(t, SortByID, m.sortMode)
	run(t, m, cmd)
	assert.Equal(t, []int{1, 2, 3}, taskIDs(m))
	assert.Contains(t, m.View(), "sort: id")
}

func TestModel_DeleteConfirmed(t *testing.T) {
	m, store := newTestModel(t)

	m.Update(keyPress("d"))
	assert.Equal(t, ModeConfirm, m.mode)
	assert.Equal(t, 1, m.confirmTaskID)
	assert.Contains(t, m.View(), "Delete #1?")

	_, cmd := m.Update(keyPress("y"))
	assert.Equal(t, ModeNormal, m.mode)
	run(t, m, cmd)

	got, err := store.Get(1)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Len(t, m.tasks, 2)
	assert.Contains(t, m.notice, "Deleted #1")
	assert.Contains(t, m.notice, "no longer blocked: #2")
}

func TestModel_DeleteCancelled(t *testing.T) {
	m, store := newTestModel(t)

	m.Update(keyPress("d"))
	_, cmd := m.Update(keyPress("n"))

	assert.Nil(t, cmd)
	assert.Equal(t, ModeNormal, m.mode)
	got, _ := store.Get(1)
	assert.NotNil(t, got)
}

func TestModel_Detail(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, m, cmd)

	require.Equal(t, ModeDetail, m.mode)
	view := m.View()
	assert.Contains(t, view, "#1 Design")
	assert.Contains(t, view, "30m")
	assert.Contains(t, view, "#2 Build")
	assert.Contains(t, view, "(critical)")

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeNormal, m.mode)
	assert.Nil(t, m.detail)
}

func TestModel_Recompute(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(keyPress("R"))
	run(t, m, cmd)

	assert.Equal(t, "Recomputed 3 task(s), critical path 1h30m", m.notice)
	assert.Contains(t, m.View(), "Recomputed 3 task(s)")
}

func TestModel_Error(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(MsgError{Err: errors.New("store offline")})

	assert.Contains(t, m.View(), "Error: store offline")

	run(t, m, m.loadTasks())
	assert.NoError(t, m.err)
}

func TestModel_Help(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(keyPress("?"))
	assert.Equal(t, ModeHelp, m.mode)
	assert.Contains(t, m.View(), "Keybindings")

	m.Update(keyPress("x"))
	assert.Equal(t, ModeNormal, m.mode)
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(keyPress("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_EmptyBoard(t *testing.T) {
	c := app.NewWithDeps(app.Config{}, testutil.NewMockStore(), &testutil.MockClock{NowTime: testNow}, nil)
	m := New(c)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	run(t, m, m.Init())

	assert.Contains(t, m.View(), "No tasks")
	assert.Nil(t, m.SelectedTask())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

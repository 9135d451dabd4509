package filelock

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_ExclusiveBlocksUntilReleased(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "store.lock")

	first, err := Acquire(path, true)
	require.NoError(t, err)
	assert.FileExists(t, path)

	acquired := make(chan *Lock)
	go func() {
		second, err := Acquire(path, true)
		assert.NoError(t, err)
		acquired <- second
	}()

	select {
	case <-acquired:
		t.Fatal("second exclusive lock acquired while the first was held")
	case <-time.After(50 * time.Millisecond):
	}

	first.Release()
	select {
	case second := <-acquired:
		second.Release()
	case <-time.After(5 * time.Second):
		t.Fatal("second exclusive lock not acquired after release")
	}
}

func TestAcquire_SharedLocksCoexist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.lock")

	a, err := Acquire(path, false)
	require.NoError(t, err)
	defer a.Release()

	done := make(chan struct{})
	go func() {
		b, err := Acquire(path, false)
		assert.NoError(t, err)
		b.Release()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("shared lock blocked by another shared lock")
	}
}

func TestLock_ReleaseNil(t *testing.T) {
	var l *Lock
	assert.NotPanics(t, l.Release)

	path := filepath.Join(t.TempDir(), "store.lock")
	held, err := Acquire(path, true)
	require.NoError(t, err)
	held.Release()
	assert.NotPanics(t, held.Release)
}

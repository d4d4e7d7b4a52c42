package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_FiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lettuce.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: :8080\n"), 0o644))

	var fired atomic.Int32
	w, err := New(path, func() { fired.Add(1) })
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("listen_addr: :9090\n"), 0o644))

	assert.Eventually(t, func() bool {
		return fired.Load() > 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lettuce.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: b\n"), 0o644))

	var fired atomic.Int32
	w, err := New(path, func() { fired.Add(1) })
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: y\n"), 0o644))

	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, fired.Load())
}

func TestWatcher_StartTwice(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lettuce.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	w, err := New(path, func() {})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
}

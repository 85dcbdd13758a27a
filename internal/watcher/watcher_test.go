package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/twinview/internal/watcher"
)

func startWatcher(t *testing.T, path string) (*watcher.Watcher, *atomic.Int32) {
	t.Helper()
	w, err := watcher.New(watcher.Config{Path: path, DebounceDur: 50 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	var calls atomic.Int32
	require.NoError(t, w.Start(func() { calls.Add(1) }))
	return w, &calls
}

func TestWatcher_CoalescesBurst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "views.yaml")
	require.NoError(t, os.WriteFile(path, []byte("views: []"), 0o644))
	_, calls := startWatcher(t, path)

	for i := range 10 {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("# edit %d\nviews: []", i)), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())
}

func TestWatcher_SeesRenameOver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "views.yaml")
	require.NoError(t, os.WriteFile(path, []byte("views: []"), 0o644))
	_, calls := startWatcher(t, path)

	tmp := filepath.Join(dir, ".views.yaml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("views: []\n"), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "views.yaml")
	require.NoError(t, os.WriteFile(path, []byte("views: []"), 0o644))
	_, calls := startWatcher(t, path)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("changed"), 0o644))

	time.Sleep(200 * time.Millisecond)
	require.Zero(t, calls.Load())
}

func TestWatcher_StopDiscardsPending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "views.yaml")
	require.NoError(t, os.WriteFile(path, []byte("views: []"), 0o644))
	w, calls := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte("# edit\nviews: []"), 0o644))
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	time.Sleep(150 * time.Millisecond)
	require.Zero(t, calls.Load())
}

func TestWatcher_StartErrors(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig(filepath.Join(t.TempDir(), "missing", "views.yaml")))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()
	require.ErrorContains(t, w.Start(func() {}), "watching directory")

	path := filepath.Join(t.TempDir(), "views.yaml")
	w2, _ := startWatcher(t, path)
	require.ErrorContains(t, w2.Start(func() {}), "already started")
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/tmp/views.yaml")
	require.Equal(t, "/tmp/views.yaml", cfg.Path)
	require.Equal(t, 250*time.Millisecond, cfg.DebounceDur)
}

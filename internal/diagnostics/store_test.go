package diagnostics_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/twinview/internal/diagnostics"
)

func openStore(t *testing.T) *diagnostics.Store {
	t.Helper()
	s, err := diagnostics.OpenStore(filepath.Join(t.TempDir(), "diag", "diagnostics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RecordAndList(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	first, err := s.Record(ctx, diagnostics.Entry{SessionID: "s1", Kind: diagnostics.KindCritical, Message: "crashed"})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	require.False(t, first.CreatedAt.IsZero())

	_, err = s.Record(ctx, diagnostics.Entry{SessionID: "s1", Kind: diagnostics.KindBrowser, Message: "hello, source app.js, line number 3"})
	require.NoError(t, err)
	_, err = s.Record(ctx, diagnostics.Entry{SessionID: "s2", Kind: diagnostics.KindBrowser, Message: "other"})
	require.NoError(t, err)

	all, err := s.List(ctx, diagnostics.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "crashed", all[0].Message)
	require.Equal(t, diagnostics.KindCritical, all[0].Kind)

	bySession, err := s.List(ctx, diagnostics.Filter{SessionID: "s1"})
	require.NoError(t, err)
	require.Len(t, bySession, 2)

	byKind, err := s.List(ctx, diagnostics.Filter{Kind: diagnostics.KindBrowser, Limit: 1})
	require.NoError(t, err)
	require.Len(t, byKind, 1)
	require.Equal(t, diagnostics.KindBrowser, byKind[0].Kind)
}

func TestStore_RejectsUnknownKind(t *testing.T) {
	s := openStore(t)
	_, err := s.Record(context.Background(), diagnostics.Entry{Kind: "verbose", Message: "x"})
	require.ErrorContains(t, err, "unknown diagnostics kind")
}

func TestStore_ReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagnostics.db")
	s, err := diagnostics.OpenStore(path)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), diagnostics.Entry{SessionID: "s", Kind: diagnostics.KindCritical, Message: "m"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = diagnostics.OpenStore(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	require.Equal(t, path, s.Path())

	entries, err := s.List(context.Background(), diagnostics.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestStore_Prune(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	old := time.Now().UTC().Add(-48 * time.Hour)

	_, err := s.Record(ctx, diagnostics.Entry{Kind: diagnostics.KindBrowser, Message: "old", CreatedAt: old})
	require.NoError(t, err)
	_, err = s.Record(ctx, diagnostics.Entry{Kind: diagnostics.KindBrowser, Message: "new"})
	require.NoError(t, err)

	n, err := s.Prune(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	entries, err := s.List(ctx, diagnostics.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "new", entries[0].Message)
}

func TestStore_Watcher(t *testing.T) {
	s := openStore(t)
	w := s.Watcher("session-1")

	w.LogCritical("window crashed")
	w.LogBrowser("console line")

	entries, err := s.List(context.Background(), diagnostics.Filter{SessionID: "session-1"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, diagnostics.KindCritical, entries[0].Kind)
	require.Equal(t, "window crashed", entries[0].Message)
	require.Equal(t, diagnostics.KindBrowser, entries[1].Kind)
}

package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-renamer/internal/repository"
)

func newIngestor(t *testing.T) *FSIngestor {
	t.Helper()
	db, err := repository.Open(context.Background(), repository.Config{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { repository.Close(db, nil) })
	return NewFSIngestor(repository.NewDocumentFileRepository(db, nil), nil)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestIngestPathDeduplicatesByContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.PDF")
	writeFile(t, a, "%PDF-1.4 same")
	writeFile(t, b, "%PDF-1.4 same")

	ing := newIngestor(t)
	first, err := ing.IngestPath(context.Background(), a)
	require.NoError(t, err)
	assert.False(t, first.Deduplicated)
	assert.Len(t, first.HashHex, 64)

	second, err := ing.IngestPath(context.Background(), b)
	require.NoError(t, err)
	assert.True(t, second.Deduplicated)
	assert.Equal(t, first.FileID, second.FileID)
	assert.Equal(t, a, second.SourcePath)
}

func TestIngestPathRejectsUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "notes.docx")
	writeFile(t, p, "x")

	_, err := newIngestor(t).IngestPath(context.Background(), p)
	assert.Error(t, err)
}

func TestIngestDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "one.pdf"), "one")
	writeFile(t, filepath.Join(dir, "nested", "two.pdf"), "two")
	writeFile(t, filepath.Join(dir, "nested", "dup.pdf"), "one")
	writeFile(t, filepath.Join(dir, "readme.md"), "skip")
	writeFile(t, filepath.Join(dir, ".hidden", "three.pdf"), "three")

	results, stats, err := newIngestor(t).IngestDirectory(context.Background(), dir, true)
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, uint32(3), stats.Matched)
	assert.Equal(t, uint32(3), stats.Succeeded)
	assert.Equal(t, uint32(1), stats.Deduplicated)
	assert.Equal(t, uint32(0), stats.Failed)

	_, _, err = newIngestor(t).IngestDirectory(context.Background(), "  ", true)
	assert.Error(t, err)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden("/a/.git"))
	assert.False(t, IsHidden("/a/b.pdf"))
	assert.False(t, IsHidden("."))
}

func TestStartWatcherEmitsNewFiles(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "old.pdf")
	writeFile(t, existing, "old")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
		Debounce:    20 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.Equal(t, existing, receive(t, events))

	created := filepath.Join(dir, "new.pdf")
	writeFile(t, created, "new")
	assert.Equal(t, created, receive(t, events))

	cancel()
	for range events {
	}
}

func TestStartWatcherEmitsFilesOfMovedInDirectory(t *testing.T) {
	root := t.TempDir()
	staging := filepath.Join(t.TempDir(), "batch")
	require.NoError(t, os.MkdirAll(staging, 0o755))
	writeFile(t, filepath.Join(staging, "a.pdf"), "a")
	writeFile(t, filepath.Join(staging, "notes.md"), "skip")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:    []string{root},
		Debounce: 20 * time.Millisecond,
	})
	require.NoError(t, err)

	moved := filepath.Join(root, "batch")
	require.NoError(t, os.Rename(staging, moved))
	assert.Equal(t, filepath.Join(moved, "a.pdf"), receive(t, events))

	cancel()
	for range events {
	}
}

func TestStartWatcherRequiresRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	assert.Error(t, err)
}

func receive(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher event")
		return ""
	}
}

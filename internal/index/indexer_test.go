package index

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semnotes/semnotes/internal/embed"
	"github.com/semnotes/semnotes/internal/notes"
	"github.com/semnotes/semnotes/internal/vector"
	"github.com/semnotes/semnotes/internal/vector/memory"
)

var noteExts = []string{".txt", ".md", ".org"}

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func words(n int) string {
	out := make([]string, n)
	for i := range out {
		out[i] = "note"
	}
	return strings.Join(out, " ")
}

func newIndexer(dir string, store vector.Store, batchSize int) *Indexer {
	processor := notes.NewProcessor(10, 2, 20)
	return New(processor, embed.NewFake(8), store, dir, noteExts, batchSize)
}

func TestIndex_SkipsUndecodableFile(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 9; i++ {
		writeFile(t, dir, string(rune('a'+i))+".txt", []byte("some note content here"))
	}
	writeFile(t, dir, "broken.txt", []byte{0xff, 0xfe, 0x80})

	store := memory.New("test")
	stats, err := newIndexer(dir, store, 4).Index(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, stats.FilesFound)
	assert.Equal(t, 9, stats.FilesIndexed)
	assert.Equal(t, 1, stats.FilesSkipped)

	info, err := store.CollectionInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(9), info.PointsCount)
}

func TestIndex_BatchesAndRemainder(t *testing.T) {
	dir := t.TempDir()
	// 7 single-chunk files with batch size 3: flushes at 3, 6, then a
	// remainder of 1.
	for i := 0; i < 7; i++ {
		writeFile(t, dir, string(rune('a'+i))+".md", []byte("short note"))
	}

	store := memory.New("test")
	stats, err := newIndexer(dir, store, 3).Index(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, stats.Chunks)
	assert.Equal(t, 3, stats.Batches)
}

func TestIndex_ChunksLongDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "long.txt", []byte(words(50)))

	store := memory.New("test")
	stats, err := newIndexer(dir, store, 32).Index(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.FilesIndexed)
	assert.Greater(t, stats.Chunks, 1)

	info, err := store.CollectionInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(stats.Chunks), info.PointsCount)
}

func TestIndex_Idempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", []byte(words(50)))
	writeFile(t, dir, "b.txt", []byte("short"))

	store := memory.New("test")
	ix := newIndexer(dir, store, 4)

	first, err := ix.Index(context.Background())
	require.NoError(t, err)
	_, err = ix.Index(context.Background())
	require.NoError(t, err)

	// Point ids are deterministic, so a second run replaces rather than
	// duplicates.
	info, err := store.CollectionInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(first.Chunks), info.PointsCount)
}

// failingStore wraps a Store and fails Upsert after a given number of calls.
type failingStore struct {
	vector.Store
	failAfter int
	upserts   int
}

func (f *failingStore) Upsert(ctx context.Context, points []vector.Point) error {
	f.upserts++
	if f.upserts > f.failAfter {
		return errors.New("connection refused")
	}
	return f.Store.Upsert(ctx, points)
}

func TestIndex_AbortsOnStoreFailure(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 6; i++ {
		writeFile(t, dir, string(rune('a'+i))+".txt", []byte("note"))
	}

	inner := memory.New("test")
	store := &failingStore{Store: inner, failAfter: 1}
	processor := notes.NewProcessor(10, 2, 20)
	ix := New(processor, embed.NewFake(8), store, dir, noteExts, 3)

	_, err := ix.Index(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upserting batch")

	// The first batch stays committed.
	info, err := inner.CollectionInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), info.PointsCount)
}

func TestReindex_FreshStore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", []byte("note"))

	// Deleting a collection that does not exist is tolerated.
	store := memory.New("test")
	stats, err := newIndexer(dir, store, 4).Reindex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesIndexed)
}

func TestReindex_DropsStalePoints(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.txt", []byte("note"))

	store := memory.New("test")
	ctx := context.Background()
	require.NoError(t, store.EnsureCollection(ctx, 8))
	require.NoError(t, store.Upsert(ctx, []vector.Point{{
		ID:     "stale",
		Vector: make([]float32, 8),
	}}))

	_, err := newIndexer(dir, store, 4).Reindex(ctx)
	require.NoError(t, err)

	info, err := store.CollectionInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.PointsCount, "stale point should be gone after reindex")
}

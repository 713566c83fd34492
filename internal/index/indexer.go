// Package index orchestrates directory traversal, chunking, embedding, and
// vector store upserts.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/semnotes/semnotes/internal/embed"
	"github.com/semnotes/semnotes/internal/notes"
	"github.com/semnotes/semnotes/internal/observability"
	"github.com/semnotes/semnotes/internal/vector"
)

// Indexer streams note files into the vector store in batches.
type Indexer struct {
	processor *notes.Processor
	embedder  embed.Embedder
	store     vector.Store
	notesDir  string
	exts      []string
	batchSize int
}

// New creates an Indexer over notesDir.
func New(processor *notes.Processor, embedder embed.Embedder, store vector.Store, notesDir string, exts []string, batchSize int) *Indexer {
	return &Indexer{
		processor: processor,
		embedder:  embedder,
		store:     store,
		notesDir:  notesDir,
		exts:      exts,
		batchSize: batchSize,
	}
}

// Index processes every note file under the configured directory and
// upserts its chunks. Files that cannot be read or decoded are logged and
// skipped; a store failure aborts the run, leaving earlier batches
// committed. The returned Stats describe the run even when it aborts.
func (ix *Indexer) Index(ctx context.Context) (*Stats, error) {
	stats := NewStats()

	if err := ix.store.EnsureCollection(ctx, ix.embedder.Dimension()); err != nil {
		return stats, fmt.Errorf("ensuring collection: %w", err)
	}

	files, err := notes.FindNoteFiles(ix.notesDir, ix.exts)
	if err != nil {
		return stats, fmt.Errorf("finding note files: %w", err)
	}
	stats.FilesFound = len(files)
	slog.Info("indexing", "dir", ix.notesDir, "files", len(files), "batch_size", ix.batchSize)

	var batch []notes.Chunk
	for _, path := range files {
		chunks, err := ix.processor.ProcessFile(path)
		if err != nil {
			slog.Warn("skipping file", "path", path, "error", err)
			stats.FilesSkipped++
			continue
		}
		stats.FilesIndexed++
		stats.Chunks += len(chunks)
		batch = append(batch, chunks...)

		if len(batch) >= ix.batchSize {
			if err := ix.flush(ctx, batch); err != nil {
				return stats, err
			}
			stats.Batches++
			batch = nil
		}
	}
	if len(batch) > 0 {
		if err := ix.flush(ctx, batch); err != nil {
			return stats, err
		}
		stats.Batches++
	}

	stats.Finish()
	slog.Info("indexing complete",
		"files", stats.FilesIndexed,
		"skipped", stats.FilesSkipped,
		"chunks", stats.Chunks,
		"batches", stats.Batches,
		"duration", stats.Duration.Round(time.Millisecond),
	)
	return stats, nil
}

// Reindex deletes the collection and indexes everything from scratch. A
// missing collection is tolerated. Not atomic: a crash mid-run leaves the
// collection empty or partially populated.
func (ix *Indexer) Reindex(ctx context.Context) (*Stats, error) {
	slog.Info("deleting collection before reindex")
	if err := ix.store.DeleteCollection(ctx); err != nil {
		slog.Warn("could not delete collection (may not exist)", "error", err)
	}
	return ix.Index(ctx)
}

func (ix *Indexer) flush(ctx context.Context, batch []notes.Chunk) error {
	ctx, span := observability.StartIndexBatchSpan(ctx, len(batch))
	defer span.End()

	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}
	vecs, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		observability.RecordError(span, err)
		return fmt.Errorf("embedding batch: %w", err)
	}
	if len(vecs) != len(batch) {
		err := fmt.Errorf("embedding batch: got %d vectors, want %d", len(vecs), len(batch))
		observability.RecordError(span, err)
		return err
	}

	points := make([]vector.Point, len(batch))
	for i, c := range batch {
		points[i] = vector.Point{
			ID:     c.PointID(),
			Vector: vecs[i],
			Payload: vector.Payload{
				Filepath:    c.Path,
				Filename:    c.Filename(),
				ChunkIndex:  c.Index,
				TotalChunks: c.TotalChunks,
				WordCount:   c.WordCount,
				FileType:    c.FileType,
			},
		}
	}
	if err := ix.store.Upsert(ctx, points); err != nil {
		observability.RecordError(span, err)
		return fmt.Errorf("upserting batch: %w", err)
	}
	return nil
}

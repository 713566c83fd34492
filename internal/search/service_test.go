package search

import (
	"context"
	"errors"
	"testing"

	"github.com/semnotes/semnotes/internal/vector"
)

// recordingStore captures the limit passed to Search and returns canned hits.
type recordingStore struct {
	vector.Store
	gotLimit int
	hits     []vector.Hit
	err      error
}

func (r *recordingStore) Search(_ context.Context, _ []float32, limit int) ([]vector.Hit, error) {
	r.gotLimit = limit
	return r.hits, r.err
}

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	vecs := make([][]float32, len(texts))
	for i := range vecs {
		vecs[i] = []float32{1, 0}
	}
	return vecs, nil
}

func (s *stubEmbedder) Dimension() int { return 2 }
func (s *stubEmbedder) Name() string   { return "stub" }

func TestService_OversamplesCandidates(t *testing.T) {
	store := &recordingStore{hits: []vector.Hit{hit("a", 0.9)}}
	svc := NewService(&stubEmbedder{}, store)

	results, err := svc.Search(context.Background(), "query", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.gotLimit != 30 {
		t.Errorf("store queried with limit %d, want 30 (limit*3)", store.gotLimit)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestService_EmbedError(t *testing.T) {
	embedErr := errors.New("model unavailable")
	svc := NewService(&stubEmbedder{err: embedErr}, &recordingStore{})

	_, err := svc.Search(context.Background(), "query", 5)
	if !errors.Is(err, embedErr) {
		t.Fatalf("expected embed error to propagate, got %v", err)
	}
}

func TestService_StoreError(t *testing.T) {
	storeErr := errors.New("connection refused")
	svc := NewService(&stubEmbedder{}, &recordingStore{err: storeErr})

	_, err := svc.Search(context.Background(), "query", 5)
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}

package search

import (
	"context"
	"fmt"

	"github.com/semnotes/semnotes/internal/embed"
	"github.com/semnotes/semnotes/internal/observability"
	"github.com/semnotes/semnotes/internal/vector"
)

// oversample is the multiplier applied to limit when fetching raw chunk
// hits, so grouping by file still has enough candidates to fill limit
// results. It is a tuning knob, not a guarantee: a corpus where one file
// dominates the neighborhood can still yield fewer files than limit.
const oversample = 3

// Service embeds queries and aggregates vector hits into file results.
type Service struct {
	embedder embed.Embedder
	store    vector.Store
}

// NewService creates a search Service.
func NewService(embedder embed.Embedder, store vector.Store) *Service {
	return &Service{embedder: embedder, store: store}
}

// Search embeds query, fetches an oversampled candidate set from the store,
// and returns up to limit file-level results ranked by best chunk score.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]FileResult, error) {
	ctx, span := observability.StartSearchSpan(ctx, limit)
	defer span.End()

	vecs, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vecs) != 1 {
		err := fmt.Errorf("embedding query: got %d vectors, want 1", len(vecs))
		observability.RecordError(span, err)
		return nil, err
	}

	hits, err := s.store.Search(ctx, vecs[0], limit*oversample)
	if err != nil {
		observability.RecordError(span, err)
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := AggregateByFile(hits, limit)
	observability.RecordSearchResult(span, len(hits), len(results))
	return results, nil
}

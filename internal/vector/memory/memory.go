// Package memory is a brute-force in-memory vector.Store used by tests and
// the "memory" dev backend. Not meant for real corpora.
package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/semnotes/semnotes/internal/vector"
)

// ErrNoCollection is returned for operations on a collection that was never
// created or has been deleted.
var ErrNoCollection = errors.New("collection does not exist")

// Store keeps points in memory and searches by exact cosine similarity.
type Store struct {
	mu      sync.RWMutex
	name    string
	dim     int
	created bool
	ids     []string
	points  map[string]vector.Point
}

// New creates an empty store for the named collection.
func New(name string) *Store {
	return &Store{
		name:   name,
		points: make(map[string]vector.Point),
	}
}

func (s *Store) EnsureCollection(_ context.Context, dim int) error {
	if dim <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.created {
		return nil
	}
	s.created = true
	s.dim = dim
	return nil
}

func (s *Store) Upsert(_ context.Context, points []vector.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.created {
		return ErrNoCollection
	}
	for _, p := range points {
		if len(p.Vector) != s.dim {
			return fmt.Errorf("vector dimension %d, want %d", len(p.Vector), s.dim)
		}
		if _, exists := s.points[p.ID]; !exists {
			s.ids = append(s.ids, p.ID)
		}
		s.points[p.ID] = p
	}
	return nil
}

func (s *Store) Search(_ context.Context, vec []float32, limit int) ([]vector.Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.created {
		return nil, ErrNoCollection
	}

	hits := make([]vector.Hit, 0, len(s.ids))
	for _, id := range s.ids {
		p := s.points[id]
		hits = append(hits, vector.Hit{
			ID:      p.ID,
			Score:   cosine(p.Vector, vec),
			Payload: p.Payload,
		})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if limit < len(hits) {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *Store) CollectionInfo(_ context.Context) (*vector.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.created {
		return nil, ErrNoCollection
	}
	return &vector.CollectionInfo{
		Name:        s.name,
		Status:      "green",
		PointsCount: uint64(len(s.points)),
		VectorSize:  uint64(s.dim),
		Distance:    "Cosine",
	}, nil
}

func (s *Store) DeleteCollection(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.created {
		return ErrNoCollection
	}
	s.created = false
	s.dim = 0
	s.ids = nil
	s.points = make(map[string]vector.Point)
	return nil
}

func (s *Store) Close() error { return nil }

func cosine(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

var _ vector.Store = (*Store)(nil)

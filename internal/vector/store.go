// Package vector defines the storage contract for embedded note chunks.
package vector

import "context"

// Point is one embedded chunk ready for storage.
type Point struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// Payload is the metadata persisted alongside each point.
type Payload struct {
	Filepath    string
	Filename    string
	ChunkIndex  int
	TotalChunks int
	WordCount   int
	FileType    string
}

// Hit is a single similarity match, highest-score first in query results.
type Hit struct {
	ID      string
	Score   float32
	Payload Payload
}

// CollectionInfo is a fixed, typed summary of the collection state. The
// adapter never leaks the underlying client's response objects.
type CollectionInfo struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	PointsCount uint64 `json:"points_count"`
	VectorSize  uint64 `json:"vector_size"`
	Distance    string `json:"distance"`
}

// Store provides vector persistence and similarity search over one named
// collection. Implementations do not retry; failures propagate to callers.
type Store interface {
	// EnsureCollection creates the collection with the given dimensionality
	// and cosine distance if it does not exist. Idempotent.
	EnsureCollection(ctx context.Context, dim int) error
	// Upsert writes points by id; an existing id is replaced, not duplicated.
	Upsert(ctx context.Context, points []Point) error
	// Search returns up to limit nearest neighbors, best score first.
	Search(ctx context.Context, vector []float32, limit int) ([]Hit, error)
	// CollectionInfo returns a summary of the collection, or an error if it
	// does not exist or the store is unreachable.
	CollectionInfo(ctx context.Context) (*CollectionInfo, error)
	// DeleteCollection removes the collection and everything in it.
	DeleteCollection(ctx context.Context) error
	// Close releases the underlying connection.
	Close() error
}

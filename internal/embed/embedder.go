// Package embed produces fixed-length vector representations of text.
package embed

import "context"

// Embedder converts texts into fixed-length vectors.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension returns the length of the vectors this embedder produces.
	Dimension() int
	// Name returns the model identifier.
	Name() string
}

package embed

import (
	"context"
	"hash/fnv"
	"math"
)

// Fake is a deterministic in-process Embedder for tests and offline
// development. Vectors are derived from a hash of the text and L2-normalized
// so identical texts land on the same point and cosine scores stay in
// [-1, 1]. It carries no semantic meaning.
type Fake struct {
	Dim int
}

// NewFake creates a Fake embedder with the given dimensionality.
func NewFake(dim int) *Fake {
	return &Fake{Dim: dim}
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Dimension() int { return f.Dim }

func (f *Fake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = f.vector(text)
	}
	return vectors, nil
}

func (f *Fake) vector(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	state := h.Sum64()

	vec := make([]float32, f.Dim)
	var norm float64
	for i := range vec {
		// xorshift64 keeps the sequence deterministic per seed.
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		v := float64(int64(state%2000)-1000) / 1000.0
		vec[i] = float32(v)
		norm += v * v
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}

var _ Embedder = (*Fake)(nil)

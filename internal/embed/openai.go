package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/semnotes/semnotes/internal/observability"
)

// Client implements Embedder against an OpenAI-compatible /embeddings
// endpoint (OpenAI, Ollama, text-embeddings-inference, vLLM).
type Client struct {
	baseURL string
	apiKey  string
	model   string
	dim     int
	http    *http.Client
}

// NewClient creates an embeddings client. dim is the dimensionality the
// model is expected to produce; responses with a different length are
// rejected rather than silently stored.
func NewClient(baseURL, apiKey, model string, dim int) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		dim:     dim,
		http:    &http.Client{Timeout: 300 * time.Second},
	}
}

func (c *Client) Name() string { return c.model }

func (c *Client) Dimension() int { return c.dim }

func (c *Client) Embed(ctx context.Context, texts []string) (_ [][]float32, err error) {
	ctx, span := observability.StartEmbedSpan(ctx, c.model, len(texts))
	defer func() {
		observability.RecordError(span, err)
		span.End()
	}()

	body := map[string]any{
		"model": c.model,
		"input": texts,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings: %s: %s", resp.Status, respBody)
	}

	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, err
	}
	if len(result.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings: got %d vectors, want %d", len(result.Data), len(texts))
	}

	vectors := make([][]float32, len(result.Data))
	for i, d := range result.Data {
		if len(d.Embedding) != c.dim {
			return nil, fmt.Errorf("embeddings: vector %d has dimension %d, want %d", i, len(d.Embedding), c.dim)
		}
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

var _ Embedder = (*Client)(nil)

package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func embedServer(t *testing.T, dim int, wantModel string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Model != wantModel {
			t.Errorf("model = %q, want %q", req.Model, wantModel)
		}

		type item struct {
			Embedding []float32 `json:"embedding"`
		}
		resp := struct {
			Data []item `json:"data"`
		}{}
		for range req.Input {
			vec := make([]float32, dim)
			vec[0] = 1
			resp.Data = append(resp.Data, item{Embedding: vec})
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestClient_Embed(t *testing.T) {
	srv := embedServer(t, 8, "all-mpnet-base-v2")
	defer srv.Close()

	c := NewClient(srv.URL, "", "all-mpnet-base-v2", 8)
	vecs, err := c.Embed(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vecs))
	}
	if len(vecs[0]) != 8 {
		t.Errorf("vector dimension = %d, want 8", len(vecs[0]))
	}
}

func TestClient_Embed_DimensionMismatch(t *testing.T) {
	srv := embedServer(t, 4, "m")
	defer srv.Close()

	c := NewClient(srv.URL, "", "m", 8)
	if _, err := c.Embed(context.Background(), []string{"hello"}); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestClient_Embed_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "m", 8)
	if _, err := c.Embed(context.Background(), []string{"hello"}); err == nil {
		t.Fatal("expected error from 500 response")
	}
}

func TestFake_Deterministic(t *testing.T) {
	f := NewFake(16)
	a, err := f.Embed(context.Background(), []string{"note text"})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := f.Embed(context.Background(), []string{"note text"})
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatal("fake embedder should be deterministic")
		}
	}

	c, _ := f.Embed(context.Background(), []string{"different text"})
	same := true
	for i := range a[0] {
		if a[0][i] != c[0][i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts should produce different vectors")
	}
}

func TestFake_Normalized(t *testing.T) {
	f := NewFake(32)
	vecs, _ := f.Embed(context.Background(), []string{"anything"})
	var norm float64
	for _, v := range vecs[0] {
		norm += float64(v) * float64(v)
	}
	if norm < 0.99 || norm > 1.01 {
		t.Errorf("vector norm^2 = %f, want ~1", norm)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.Notes.Dir = t.TempDir()
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Qdrant.Collection != "personal_notes" {
		t.Errorf("collection = %q, want personal_notes", cfg.Qdrant.Collection)
	}
	if cfg.Embed.Dimension != 768 {
		t.Errorf("dimension = %d, want 768", cfg.Embed.Dimension)
	}
	if cfg.Chunking.Size != 500 || cfg.Chunking.Overlap != 100 {
		t.Errorf("chunking = %d/%d, want 500/100", cfg.Chunking.Size, cfg.Chunking.Overlap)
	}
	if len(cfg.Notes.Extensions) != 3 {
		t.Errorf("extensions = %v, want .txt/.md/.org", cfg.Notes.Extensions)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SEMNOTES_QDRANT_HOST", "qdrant.internal")
	t.Setenv("SEMNOTES_CHUNKING_SIZE", "250")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Qdrant.Host != "qdrant.internal" {
		t.Errorf("host = %q, want qdrant.internal", cfg.Qdrant.Host)
	}
	if cfg.Chunking.Size != 250 {
		t.Errorf("chunk size = %d, want 250", cfg.Chunking.Size)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "semnotes.yaml")
	content := "qdrant:\n  collection: work_notes\nhttp:\n  port: 8080\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Qdrant.Collection != "work_notes" {
		t.Errorf("collection = %q, want work_notes", cfg.Qdrant.Collection)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.HTTP.Port)
	}
	// Untouched keys keep defaults.
	if cfg.Qdrant.Port != 6334 {
		t.Errorf("qdrant port = %d, want 6334", cfg.Qdrant.Port)
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig(t)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingNotesDir(t *testing.T) {
	cfg := validConfig(t)
	cfg.Notes.Dir = filepath.Join(cfg.Notes.Dir, "does-not-exist")
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "notes directory") {
		t.Fatalf("expected notes directory error, got %v", err)
	}
}

func TestValidate_ChunkOverlap(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"valid", 500, 100, false},
		{"equal", 100, 100, true},
		{"inverted", 100, 200, true},
		{"zero_overlap", 100, 0, true},
		{"negative_overlap", 100, -5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.Chunking.Size = tt.size
			cfg.Chunking.Overlap = tt.overlap
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("size=%d overlap=%d: err=%v, wantErr=%v", tt.size, tt.overlap, err, tt.wantErr)
			}
		})
	}
}

func TestValidate_BadDimension(t *testing.T) {
	cfg := validConfig(t)
	cfg.Embed.Dimension = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero dimension")
	}
}

func TestValidate_UnknownStore(t *testing.T) {
	cfg := validConfig(t)
	cfg.Index.Store = "sqlite"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown store")
	}
}

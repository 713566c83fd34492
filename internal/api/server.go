// Package api exposes semantic search over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/semnotes/semnotes/internal/observability"
	"github.com/semnotes/semnotes/internal/search"
	"github.com/semnotes/semnotes/internal/vector"
)

// Config holds the static values the API reports and enforces.
type Config struct {
	ListenAddr string
	// NotesRoot confines the /file endpoint; requests resolving outside it
	// are rejected.
	NotesRoot    string
	ModelName    string
	Collection   string
	EmbeddingDim int
}

// Server is the search API server.
type Server struct {
	config Config
	// notesRoot is the absolute notes directory; resolvedRoot additionally
	// has symlinks resolved and is the authority for confinement checks.
	notesRoot    string
	resolvedRoot string
	searcher     *search.Service
	store        vector.Store
	server       *http.Server
}

// SearchResponse is the /search payload.
type SearchResponse struct {
	Query   string              `json:"query"`
	Results []search.FileResult `json:"results"`
	Count   int                 `json:"count"`
	Limit   int                 `json:"limit"`
}

// NewServer creates the API server. The notes root is resolved to an
// absolute path once so path confinement checks are consistent.
func NewServer(config Config, searcher *search.Service, store vector.Store) (*Server, error) {
	root, err := filepath.Abs(config.NotesRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving notes root: %w", err)
	}
	resolvedRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("resolving notes root: %w", err)
	}

	s := &Server{
		config:       config,
		notesRoot:    root,
		resolvedRoot: resolvedRoot,
		searcher:     searcher,
		store:        store,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/info", s.handleInfo)
	mux.HandleFunc("/file", s.handleFile)

	s.server = &http.Server{
		Addr:         config.ListenAddr,
		Handler:      corsMiddleware(tracingMiddleware(loggingMiddleware(mux))),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the configured handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving and blocks until shutdown.
func (s *Server) Start() error {
	slog.Info("starting API server", "addr", s.config.ListenAddr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server error: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	slog.Info("stopping API server")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var (
		query string
		limit = 10
	)

	switch r.Method {
	case http.MethodGet:
		query = r.URL.Query().Get("q")
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				respondError(w, http.StatusBadRequest, "invalid limit parameter")
				return
			}
			limit = n
		}
	case http.MethodPost:
		var body struct {
			Query string `json:"query"`
			Limit *int   `json:"limit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON in request body")
			return
		}
		query = body.Query
		if body.Limit != nil {
			limit = *body.Limit
		}
	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if query == "" {
		respondError(w, http.StatusBadRequest, "query parameter is required")
		return
	}
	if limit < 1 || limit > 100 {
		respondError(w, http.StatusBadRequest, "limit must be between 1 and 100")
		return
	}

	results, err := s.searcher.Search(r.Context(), query, limit)
	if err != nil {
		slog.Error("search failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if results == nil {
		results = []search.FileResult{}
	}

	respondJSON(w, http.StatusOK, SearchResponse{
		Query:   query,
		Results: results,
		Count:   len(results),
		Limit:   limit,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	info, err := s.store.CollectionInfo(r.Context())
	if err != nil {
		slog.Error("health check failed", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "healthy",
		"collection": info,
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	info, err := s.store.CollectionInfo(r.Context())
	if err != nil {
		slog.Error("info endpoint failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not retrieve system information")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"model_name":      s.config.ModelName,
		"collection_name": s.config.Collection,
		"embedding_dim":   s.config.EmbeddingDim,
		"collection_info": info,
	})
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		respondError(w, http.StatusBadRequest, "file path parameter is required")
		return
	}

	// Confinement is checked before existence so probing outside the notes
	// root reveals nothing.
	resolved, ok := s.resolveWithinRoot(path)
	if !ok {
		respondError(w, http.StatusForbidden, "access denied: file outside notes directory")
		return
	}

	info, err := os.Stat(resolved)
	if err != nil {
		respondError(w, http.StatusNotFound, "file not found")
		return
	}
	if !info.Mode().IsRegular() {
		respondError(w, http.StatusBadRequest, "path is not a file")
		return
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		slog.Error("file read failed", "path", resolved, "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !utf8.Valid(data) {
		respondError(w, http.StatusBadRequest, "file is not valid UTF-8 text")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// resolveWithinRoot resolves path (relative paths are taken relative to the
// notes root) and reports whether the result stays inside the root. Symlinks
// are resolved before the containment check, so a link inside the root that
// targets a file outside it is rejected rather than followed.
func (s *Server) resolveWithinRoot(path string) (string, bool) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.notesRoot, path)
	}
	path = filepath.Clean(path)

	if !within(s.notesRoot, path) && !within(s.resolvedRoot, path) {
		return "", false
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		// Nothing exists at the path; the Stat that follows reports 404.
		return path, true
	}
	if !within(s.resolvedRoot, resolved) {
		return "", false
	}
	return resolved, true
}

func within(root, path string) bool {
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// corsMiddleware allows cross-origin requests from frontend development
// servers.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// tracingMiddleware wraps each request in a server span so downstream
// embed and store spans nest under it.
func tracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := observability.StartHTTPSpan(r.Context(), r.Method, r.URL.Path)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

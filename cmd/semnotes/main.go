package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/semnotes/semnotes/internal/api"
	"github.com/semnotes/semnotes/internal/config"
	"github.com/semnotes/semnotes/internal/embed"
	"github.com/semnotes/semnotes/internal/index"
	"github.com/semnotes/semnotes/internal/notes"
	"github.com/semnotes/semnotes/internal/observability"
	"github.com/semnotes/semnotes/internal/search"
	"github.com/semnotes/semnotes/internal/server"
	"github.com/semnotes/semnotes/internal/vector"
	memorystore "github.com/semnotes/semnotes/internal/vector/memory"
	qdrantstore "github.com/semnotes/semnotes/internal/vector/qdrant"
)

func main() {
	var (
		configPath string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:   "semnotes",
		Short: "Semantic search for personal notes",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ./semnotes.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	var (
		notesDir  string
		batchSize int
		reindex   bool
		jsonOut   bool
	)
	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Index note files into the vector store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(configPath, notesDir, batchSize, reindex, jsonOut)
		},
	}
	indexCmd.Flags().StringVar(&notesDir, "notes-dir", "", "Directory containing notes (default from config)")
	indexCmd.Flags().IntVar(&batchSize, "batch-size", 0, "Batch size for indexing (default from config)")
	indexCmd.Flags().BoolVar(&reindex, "reindex", false, "Delete the existing collection and reindex all files")
	indexCmd.Flags().BoolVar(&jsonOut, "json", false, "Output indexing stats as JSON")

	var (
		host string
		port int
	)
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the search API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, host, port)
		},
	}
	serveCmd.Flags().StringVar(&host, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().IntVar(&port, "port", 0, "Port to bind to (default from config)")

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Print collection information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(configPath)
		},
	}

	rootCmd.AddCommand(indexCmd, serveCmd, infoCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func openStore(cfg *config.Config) (vector.Store, error) {
	switch cfg.Index.Store {
	case "memory":
		return memorystore.New(cfg.Qdrant.Collection), nil
	default:
		return qdrantstore.New(cfg.Qdrant.Host, cfg.Qdrant.Port, cfg.Qdrant.Collection)
	}
}

func newEmbedder(cfg *config.Config) embed.Embedder {
	return embed.NewClient(cfg.Embed.BaseURL, cfg.Embed.APIKey, cfg.Embed.Model, cfg.Embed.Dimension)
}

func runIndex(configPath, notesDir string, batchSize int, reindex, jsonOut bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	// Flag overrides are applied before validation; the config is not
	// touched again afterwards.
	if notesDir != "" {
		cfg.Notes.Dir = notesDir
	}
	if batchSize > 0 {
		cfg.Index.BatchSize = batchSize
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	processor := notes.NewProcessor(cfg.Chunking.Size, cfg.Chunking.Overlap, cfg.Chunking.MaxWords)
	ix := index.New(processor, newEmbedder(cfg), store, cfg.Notes.Dir, cfg.Notes.Extensions, cfg.Index.BatchSize)

	ctx := context.Background()
	var stats *index.Stats
	if reindex {
		stats, err = ix.Reindex(ctx)
	} else {
		stats, err = ix.Index(ctx)
	}
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	if jsonOut {
		data, err := stats.JSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		stats.PrintSummary(os.Stdout)
	}
	return nil
}

func runServe(configPath, host string, port int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if host != "" {
		cfg.HTTP.Host = host
	}
	if port > 0 {
		cfg.HTTP.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := context.Background()
	tp, err := observability.InitTracing(ctx, &observability.TracingConfig{
		ServiceName:    "semnotes",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Tracing.Environment,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	embedder := newEmbedder(cfg)
	apiSrv, err := api.NewServer(api.Config{
		ListenAddr:   fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		NotesRoot:    cfg.Notes.Dir,
		ModelName:    cfg.Embed.Model,
		Collection:   cfg.Qdrant.Collection,
		EmbeddingDim: cfg.Embed.Dimension,
	}, search.NewService(embedder, store), store)
	if err != nil {
		return err
	}

	sd := server.NewShutdownHandler(30 * time.Second)
	sd.RegisterHook("api-server", 10, apiSrv.Stop)
	sd.RegisterHook("tracing", 80, tp.Shutdown)
	sd.RegisterHook("vector-store", 90, func(ctx context.Context) error {
		return store.Close()
	})

	errCh := make(chan error, 1)
	go func() {
		err := apiSrv.Start()
		if err != nil {
			sd.Shutdown()
		}
		errCh <- err
	}()

	sd.Start()
	sd.Wait()
	return <-errCh
}

func runInfo(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	info, err := store.CollectionInfo(ctx)
	if err != nil {
		return fmt.Errorf("fetching collection info: %w", err)
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

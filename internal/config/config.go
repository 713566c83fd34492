package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration. It is loaded once at startup
// and treated as immutable afterwards; components receive the values they
// need through their constructors instead of reading shared state.
type Config struct {
	Qdrant   QdrantConfig   `mapstructure:"qdrant"`
	Embed    EmbedConfig    `mapstructure:"embed"`
	Chunking ChunkingConfig `mapstructure:"chunking"`
	Index    IndexConfig    `mapstructure:"index"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Notes    NotesConfig    `mapstructure:"notes"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type QdrantConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Collection string `mapstructure:"collection"`
}

type EmbedConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	Dimension int    `mapstructure:"dimension"`
}

type ChunkingConfig struct {
	Size int `mapstructure:"size"`
	// Overlap is the number of words shared between adjacent chunks.
	Overlap int `mapstructure:"overlap"`
	// MaxWords is the word count above which a document gets chunked;
	// shorter documents are indexed as a single chunk.
	MaxWords int `mapstructure:"max_words"`
}

type IndexConfig struct {
	BatchSize int `mapstructure:"batch_size"`
	// Store selects the vector backend: "qdrant" or "memory" (dev/testing).
	Store string `mapstructure:"store"`
}

type HTTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type NotesConfig struct {
	Dir        string   `mapstructure:"dir"`
	Extensions []string `mapstructure:"extensions"`
}

type TracingConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	Environment  string  `mapstructure:"environment"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

// Validate checks the configuration and fails fast on anything that would
// make indexing or serving misbehave later.
func (c *Config) Validate() error {
	info, err := os.Stat(c.Notes.Dir)
	if err != nil {
		return fmt.Errorf("notes directory does not exist: %s", c.Notes.Dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("notes path is not a directory: %s", c.Notes.Dir)
	}
	if c.Chunking.Overlap <= 0 {
		return errors.New("chunk overlap must be positive")
	}
	if c.Chunking.Size <= c.Chunking.Overlap {
		return errors.New("chunk size must be greater than chunk overlap")
	}
	if c.Embed.Dimension <= 0 {
		return errors.New("embedding dimension must be positive")
	}
	if c.Index.BatchSize <= 0 {
		return errors.New("batch size must be positive")
	}
	if c.Index.Store != "qdrant" && c.Index.Store != "memory" {
		return fmt.Errorf("unknown vector store %q (expected qdrant or memory)", c.Index.Store)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("qdrant.host", "localhost")
	v.SetDefault("qdrant.port", 6334)
	v.SetDefault("qdrant.collection", "personal_notes")

	v.SetDefault("embed.base_url", "http://localhost:11434/v1")
	v.SetDefault("embed.model", "all-mpnet-base-v2")
	v.SetDefault("embed.dimension", 768)

	v.SetDefault("chunking.size", 500)
	v.SetDefault("chunking.overlap", 100)
	v.SetDefault("chunking.max_words", 1000)

	v.SetDefault("index.batch_size", 32)
	v.SetDefault("index.store", "qdrant")

	v.SetDefault("http.host", "localhost")
	v.SetDefault("http.port", 5000)

	v.SetDefault("notes.dir", "./notes")
	v.SetDefault("notes.extensions", []string{".txt", ".md", ".org"})

	v.SetDefault("tracing.environment", "development")
	v.SetDefault("tracing.sample_rate", 1.0)
}

// Load reads configuration from an optional YAML file and the environment.
// Environment variables use the SEMNOTES_ prefix with underscores, e.g.
// SEMNOTES_QDRANT_HOST or SEMNOTES_CHUNKING_SIZE.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SEMNOTES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else {
		v.SetConfigName("semnotes")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			// A config file is optional when no explicit path was given.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

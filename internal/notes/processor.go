package notes

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	// ErrNotFound marks a document path that does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrNotText marks a file whose bytes are not valid UTF-8.
	ErrNotText = errors.New("not valid UTF-8 text")
)

// Chunk is a contiguous slice of a source document's text together with the
// metadata stored alongside its vector.
type Chunk struct {
	Text string
	Path string
	// Index is the 0-based position of this chunk within its document.
	Index int
	// TotalChunks is the number of chunks the whole document produced.
	TotalChunks int
	// WordCount is the word count of the original document, not the chunk.
	WordCount int
	FileType  string
}

// Filename returns the base name of the source file.
func (c Chunk) Filename() string {
	return filepath.Base(c.Path)
}

// PointID returns a deterministic UUID derived from the source path and
// chunk index. Re-indexing the same file yields the same ids, so upserts
// replace existing points instead of duplicating them.
func (c Chunk) PointID() string {
	name := fmt.Sprintf("%s_%d", c.Path, c.Index)
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(name)).String()
}

// Processor reads note files and splits them into chunks.
type Processor struct {
	chunkSize int
	overlap   int
	maxWords  int
}

// NewProcessor creates a Processor. Documents longer than maxWords words are
// chunked into chunkSize-word windows with the given overlap; shorter ones
// become a single chunk.
func NewProcessor(chunkSize, overlap, maxWords int) *Processor {
	return &Processor{
		chunkSize: chunkSize,
		overlap:   overlap,
		maxWords:  maxWords,
	}
}

// ProcessFile reads path and returns its chunks in document order. All
// chunks share the document's word count and total chunk count.
func (p *Processor) ProcessFile(path string) ([]Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotText)
	}

	text := string(data)
	wordCount := len(strings.Fields(text))

	var pieces []string
	if wordCount > p.maxWords {
		pieces = ChunkWords(text, p.chunkSize, p.overlap)
	} else {
		pieces = []string{text}
	}

	chunks := make([]Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = Chunk{
			Text:        piece,
			Path:        path,
			Index:       i,
			TotalChunks: len(pieces),
			WordCount:   wordCount,
			FileType:    filepath.Ext(path),
		}
	}
	return chunks, nil
}

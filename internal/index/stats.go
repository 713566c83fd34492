package index

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Stats collects counters for one indexing run.
type Stats struct {
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at,omitempty"`
	Duration     time.Duration `json:"-"`
	FilesFound   int           `json:"files_found"`
	FilesIndexed int           `json:"files_indexed"`
	FilesSkipped int           `json:"files_skipped"`
	Chunks       int           `json:"chunks"`
	Batches      int           `json:"batches"`
}

// NewStats starts tracking an indexing run.
func NewStats() *Stats {
	return &Stats{StartedAt: time.Now()}
}

// Finish marks the run complete.
func (s *Stats) Finish() {
	s.FinishedAt = time.Now()
	s.Duration = s.FinishedAt.Sub(s.StartedAt)
}

// PrintSummary writes a human-readable summary.
func (s *Stats) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "\nIndexing summary\n")
	fmt.Fprintf(w, "  Files found:    %d\n", s.FilesFound)
	fmt.Fprintf(w, "  Files indexed:  %d\n", s.FilesIndexed)
	fmt.Fprintf(w, "  Files skipped:  %d\n", s.FilesSkipped)
	fmt.Fprintf(w, "  Chunks:         %d\n", s.Chunks)
	fmt.Fprintf(w, "  Batches:        %d\n", s.Batches)
	fmt.Fprintf(w, "  Duration:       %s\n", s.Duration.Round(time.Millisecond))
}

// JSON returns the stats as formatted JSON. The duration is emitted in
// milliseconds to match its field name.
func (s *Stats) JSON() ([]byte, error) {
	type alias Stats
	return json.MarshalIndent(struct {
		*alias
		DurationMS int64 `json:"duration_ms,omitempty"`
	}{
		alias:      (*alias)(s),
		DurationMS: s.Duration.Milliseconds(),
	}, "", "  ")
}

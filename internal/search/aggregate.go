// Package search answers semantic queries with per-file ranked results.
package search

import (
	"sort"

	"github.com/semnotes/semnotes/internal/vector"
)

// FileResult is one ranked file-level match.
type FileResult struct {
	Filepath  string  `json:"filepath"`
	Filename  string  `json:"filename"`
	BestScore float32 `json:"best_score"`
	Hits      int     `json:"hits"`
}

// AggregateByFile reduces raw chunk hits to at most limit file-level
// results. Each file keeps the best score among its chunk hits and the
// number of hits it contributed. Ordering is descending by best score;
// ties keep the order in which files first appeared in the candidate set.
// Fewer than limit distinct files yields fewer results, never padding.
func AggregateByFile(hits []vector.Hit, limit int) []FileResult {
	index := make(map[string]int)
	var results []FileResult

	for _, h := range hits {
		if i, ok := index[h.Payload.Filepath]; ok {
			results[i].Hits++
			if h.Score > results[i].BestScore {
				results[i].BestScore = h.Score
			}
			continue
		}
		index[h.Payload.Filepath] = len(results)
		results = append(results, FileResult{
			Filepath:  h.Payload.Filepath,
			Filename:  h.Payload.Filename,
			BestScore: h.Score,
			Hits:      1,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].BestScore > results[j].BestScore
	})
	if limit < len(results) {
		results = results[:limit]
	}
	return results
}

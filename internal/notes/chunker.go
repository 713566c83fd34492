// Package notes turns raw note files into chunks ready for embedding.
package notes

import "strings"

// ChunkWords splits text into overlapping windows of at most size words.
// The window start advances by size-overlap words each step, so every word
// appears in at least one window. Callers must guarantee size > overlap > 0;
// config validation enforces this before any chunking happens.
func ChunkWords(text string, size, overlap int) []string {
	words := strings.Fields(text)
	step := size - overlap

	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

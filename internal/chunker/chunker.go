// Package chunker splits batch translations into token-bounded sub-batches.
package chunker

import "unicode/utf8"

// RunesPerToken is the heuristic used by EstimateTokens. Lengths are in
// runes, not bytes.
const RunesPerToken = 4

// Chunk is a contiguous run of a batch. Offset is the index of Texts[0] in
// the original batch.
type Chunk struct {
	Offset int
	Texts  []string
}

// EstimateTokens estimates the token count for a text.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	tokens := (n + RunesPerToken - 1) / RunesPerToken
	return tokens
}

// Split partitions texts into chunks whose estimated token total does not
// exceed maxTokens. Texts are never split, order is preserved and a text
// larger than maxTokens gets a chunk of its own. maxTokens <= 0 yields a
// single chunk holding everything.
func Split(texts []string, maxTokens int) []Chunk {
	if len(texts) == 0 {
		return nil
	}
	if maxTokens <= 0 {
		return []Chunk{{Offset: 0, Texts: texts}}
	}

	var chunks []Chunk
	start := 0
	budget := 0

	for i, text := range texts {
		tokens := EstimateTokens(text)

		if i > start && budget+tokens > maxTokens {
			chunks = append(chunks, Chunk{Offset: start, Texts: texts[start:i]})
			start = i
			budget = 0
		}
		budget += tokens
	}

	return append(chunks, Chunk{Offset: start, Texts: texts[start:]})
}

// Join concatenates per-chunk results back into batch order. It assumes
// results[i] belongs to chunks[i].
func Join[T any](chunks []Chunk, results [][]T) []T {
	total := 0
	for _, c := range chunks {
		total += len(c.Texts)
	}
	out := make([]T, total)
	for i, c := range chunks {
		copy(out[c.Offset:], results[i])
	}
	return out
}

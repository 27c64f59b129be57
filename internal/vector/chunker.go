package vector

import (
	"strings"
	"unicode"
)

// Chunker splits large content into embedding-sized chunks. It uses
// sentence-aware splitting to maintain semantic coherence and supports
// configurable overlap to preserve context between chunks.
type Chunker struct {
	MaxChunkSize int // Maximum chunk size in tokens (default: 512)
	Overlap      int // Overlap size in tokens (default: 64)
}

// NewChunker returns a Chunker with defaults suited to embedding models.
func NewChunker() *Chunker {
	return &Chunker{MaxChunkSize: 512, Overlap: 64}
}

// Chunk splits content into overlapping chunks. Content that fits the
// chunk size is returned whole. Sentence boundaries are respected, empty
// chunks are dropped, and duplicates are removed.
func (c *Chunker) Chunk(content string) []string {
	if len(strings.TrimSpace(content)) == 0 {
		return []string{}
	}

	maxSize := c.MaxChunkSize
	if maxSize <= 0 {
		maxSize = 512
	}

	if EstimateTokens(content) <= maxSize {
		return []string{content}
	}

	sentences := splitSentences(content)
	if len(sentences) == 0 {
		return []string{}
	}

	var chunks []string
	var currentChunk strings.Builder
	var currentTokens int
	var previousSentences []string // carried forward for overlap

	for _, sentence := range sentences {
		sentenceTokens := EstimateTokens(sentence)

		if currentTokens+sentenceTokens > maxSize && currentTokens > 0 {
			chunks = append(chunks, currentChunk.String())

			currentChunk.Reset()
			currentTokens = 0

			// Seed the next chunk with as many trailing sentences as fit
			// in the overlap window.
			overlapTokens := 0
			overlapStart := len(previousSentences)
			for i := len(previousSentences) - 1; i >= 0; i-- {
				sentTokens := EstimateTokens(previousSentences[i])
				if overlapTokens+sentTokens > c.Overlap {
					break
				}
				overlapTokens += sentTokens
				overlapStart = i
			}
			for i := overlapStart; i < len(previousSentences); i++ {
				currentChunk.WriteString(previousSentences[i])
				currentTokens += EstimateTokens(previousSentences[i])
			}
			previousSentences = previousSentences[overlapStart:]
		}

		currentChunk.WriteString(sentence)
		currentTokens += sentenceTokens
		previousSentences = append(previousSentences, sentence)

		// Cap the overlap buffer so it cannot grow without bound.
		if len(previousSentences) > 50 {
			previousSentences = previousSentences[len(previousSentences)-50:]
		}
	}

	if currentChunk.Len() > 0 {
		chunks = append(chunks, currentChunk.String())
	}

	return dedupeChunks(chunks)
}

// EstimateTokens estimates the token count of text using the ~4 characters
// per token heuristic common to GPT-style tokenizers. Rounds up.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// splitSentences splits text on sentence terminators, keeping terminators
// and trailing whitespace with their sentence.
func splitSentences(text string) []string {
	if len(text) == 0 {
		return []string{}
	}

	var sentences []string
	var current strings.Builder
	runes := []rune(text)

	flush := func() {
		if s := current.String(); len(strings.TrimSpace(s)) > 0 {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)

		if r != '.' && r != '!' && r != '?' {
			continue
		}

		if i+1 >= len(runes) {
			flush()
			continue
		}

		next := runes[i+1]
		if !unicode.IsSpace(next) {
			// Likely an abbreviation or decimal point; keep going.
			continue
		}

		current.WriteRune(next)
		i++

		if i+1 >= len(runes) {
			flush()
			continue
		}
		// Treat as a boundary when the next sentence starts with an
		// uppercase letter or digit.
		if follow := runes[i+1]; unicode.IsUpper(follow) || unicode.IsDigit(follow) {
			flush()
		}
	}

	flush()
	return sentences
}

// dedupeChunks removes duplicate chunks while preserving order.
func dedupeChunks(chunks []string) []string {
	if len(chunks) == 0 {
		return chunks
	}

	seen := make(map[string]bool, len(chunks))
	result := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if !seen[chunk] {
			seen[chunk] = true
			result = append(result, chunk)
		}
	}
	return result
}

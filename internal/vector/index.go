// Package vector provides the vector index used for semantic retrieval:
// documents are embedded via an EmbeddingGenerator, long content is split
// into token-bounded chunks, and queries return nearest neighbors by cosine
// similarity. Two implementations share one contract: a brute-force
// in-memory index with optional SQLite write-through, and a pgvector-backed
// Postgres index.
package vector

import (
	"context"
	"time"

	"github.com/codelegend/cogito/pkg/types"
)

// Match is a document returned from a similarity search.
// Similarity is 1 - cosine distance, so higher is closer.
type Match struct {
	Document   types.Document
	Similarity float64
}

// Index is the vector index contract consumed by the RAG retriever.
type Index interface {
	// Add embeds content and stores it. Long content is chunked; all
	// chunks share a doc_id metadata key, and the returned ID is that
	// doc_id.
	Add(ctx context.Context, content, docType string, metadata map[string]string) (string, error)

	// Search returns the topK nearest documents for the query. A non-nil
	// filter restricts results to documents whose metadata contains every
	// given key/value pair.
	Search(ctx context.Context, query string, topK int, filter map[string]string) ([]Match, error)

	// DeleteOlderThan removes documents older than cutoff and returns how
	// many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)

	// Count returns the number of stored documents (chunks count
	// individually).
	Count(ctx context.Context) (int, error)
}

// matchesFilter reports whether the document metadata contains every
// key/value pair in filter.
func matchesFilter(metadata, filter map[string]string) bool {
	for k, v := range filter {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

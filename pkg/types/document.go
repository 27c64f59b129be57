package types

import "time"

// Document is a unit of text stored in the vector index.
// Long content is split into token-bounded chunks before embedding; chunks
// of the same logical document share a "doc_id" entry in Metadata.
type Document struct {
	// ID is the unique chunk identifier (format: doc:uuid).
	ID string `json:"id"`

	// Content is the chunk text.
	Content string `json:"content"`

	// Metadata holds arbitrary document metadata (session_id, doc_id,
	// chunk_index, source, ...). Values are strings for portability across
	// storage backends.
	Metadata map[string]string `json:"metadata,omitempty"`

	// DocType classifies the document origin (see DocType constants).
	DocType string `json:"doc_type"`

	// Timestamp is when the document was indexed.
	Timestamp time.Time `json:"timestamp"`

	// Embedding is the chunk's vector embedding (nil until embedded).
	Embedding []float32 `json:"embedding,omitempty"`
}

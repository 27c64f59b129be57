package vector

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codelegend/cogito/internal/llm"
	"github.com/codelegend/cogito/internal/storage"
	"github.com/codelegend/cogito/pkg/types"
)

// MemoryIndex is an RWMutex-guarded, brute-force cosine index. Embeddings
// come from the configured EmbeddingGenerator; a nil DocumentStore disables
// persistence, otherwise writes go through best-effort and Load restores
// previous contents.
type MemoryIndex struct {
	mu       sync.RWMutex
	docs     map[string]*types.Document
	embedder llm.EmbeddingGenerator
	chunker  *Chunker
	store    storage.DocumentStore
}

var _ Index = (*MemoryIndex)(nil)

// NewMemoryIndex creates an empty index. store may be nil.
func NewMemoryIndex(embedder llm.EmbeddingGenerator, store storage.DocumentStore) *MemoryIndex {
	return &MemoryIndex{
		docs:     make(map[string]*types.Document),
		embedder: embedder,
		chunker:  NewChunker(),
		store:    store,
	}
}

// Load restores documents from the configured store. Documents persisted
// without an embedding are re-embedded.
func (m *MemoryIndex) Load(ctx context.Context) error {
	if m.store == nil {
		return nil
	}

	docs, err := m.store.Documents(ctx)
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, doc := range docs {
		if len(doc.Embedding) == 0 {
			embedding, err := m.embedder.Embed(ctx, doc.Content)
			if err != nil {
				log.Printf("[vector] failed to re-embed document %s: %v", doc.ID, err)
				continue
			}
			doc.Embedding = embedding
		}
		m.docs[doc.ID] = doc
	}

	log.Printf("[vector] loaded %d documents", len(m.docs))
	return nil
}

// Add embeds content and stores it. Content longer than the chunk size is
// split; all chunks carry a doc_id metadata key and the logical doc_id is
// returned.
func (m *MemoryIndex) Add(ctx context.Context, content, docType string, metadata map[string]string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: content is required", storage.ErrInvalidInput)
	}
	if !types.IsValidDocType(docType) {
		return "", fmt.Errorf("%w: unknown document type %q", storage.ErrInvalidInput, docType)
	}

	docID := "doc:" + uuid.NewString()
	chunks := m.chunker.Chunk(content)
	now := time.Now().UTC()

	for i, chunk := range chunks {
		embedding, err := m.embedder.Embed(ctx, chunk)
		if err != nil {
			return "", fmt.Errorf("failed to embed content: %w", err)
		}

		meta := make(map[string]string, len(metadata)+2)
		for k, v := range metadata {
			meta[k] = v
		}
		meta["doc_id"] = docID
		if len(chunks) > 1 {
			meta["chunk_index"] = fmt.Sprintf("%d", i)
		}

		id := docID
		if len(chunks) > 1 {
			id = fmt.Sprintf("%s#%d", docID, i)
		}

		doc := &types.Document{
			ID:        id,
			Content:   chunk,
			Metadata:  meta,
			DocType:   docType,
			Timestamp: now,
			Embedding: embedding,
		}

		m.mu.Lock()
		m.docs[id] = doc
		m.mu.Unlock()

		m.persist(ctx, doc)
	}

	return docID, nil
}

// Search embeds the query and returns the topK nearest documents passing
// the metadata filter, sorted by similarity descending.
func (m *MemoryIndex) Search(ctx context.Context, query string, topK int, filter map[string]string) ([]Match, error) {
	if topK < 1 {
		return nil, nil
	}

	queryVec, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	m.mu.RLock()
	matches := make([]Match, 0, len(m.docs))
	for _, doc := range m.docs {
		if !matchesFilter(doc.Metadata, filter) {
			continue
		}
		matches = append(matches, Match{
			Document:   *doc,
			Similarity: CosineSimilarity(queryVec, doc.Embedding),
		})
	}
	m.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Document.ID < matches[j].Document.ID
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// DeleteOlderThan removes documents older than cutoff.
func (m *MemoryIndex) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	var removed []string
	for id, doc := range m.docs {
		if doc.Timestamp.Before(cutoff) {
			removed = append(removed, id)
			delete(m.docs, id)
		}
	}
	m.mu.Unlock()

	if m.store != nil {
		if _, err := m.store.DeleteDocumentsOlderThan(ctx, cutoff); err != nil {
			log.Printf("[vector] failed to delete old documents from store: %v", err)
		}
	}

	return len(removed), nil
}

// Count returns the number of stored chunks.
func (m *MemoryIndex) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs), nil
}

func (m *MemoryIndex) persist(ctx context.Context, doc *types.Document) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveDocument(ctx, doc); err != nil {
		log.Printf("[vector] failed to persist document %s: %v", doc.ID, err)
	}
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero-magnitude vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

package vector

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sqlitestore "github.com/codelegend/cogito/internal/storage/sqlite"
	"github.com/codelegend/cogito/pkg/types"
)

// keywordEmbedder is a deterministic test embedder: each dimension counts
// occurrences of one keyword, so cosine similarity ranks documents that
// share the query's keywords highest.
type keywordEmbedder struct {
	keywords []string
	calls    int
	err      error
}

func (e *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	lower := strings.ToLower(text)
	vec := make([]float32, len(e.keywords))
	for i, kw := range e.keywords {
		vec[i] = float32(strings.Count(lower, kw))
	}
	return vec, nil
}

func (e *keywordEmbedder) GetModel() string { return "keyword-test" }

func newTestEmbedder() *keywordEmbedder {
	return &keywordEmbedder{keywords: []string{"apple", "banana", "cherry"}}
}

func TestMemoryIndexAddAndCount(t *testing.T) {
	idx := NewMemoryIndex(newTestEmbedder(), nil)
	ctx := context.Background()

	id, err := idx.Add(ctx, "apple apple banana", types.DocTypeKnowledgeNote, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "doc:"))

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryIndexAddValidation(t *testing.T) {
	idx := NewMemoryIndex(newTestEmbedder(), nil)
	ctx := context.Background()

	_, err := idx.Add(ctx, "   ", types.DocTypeKnowledgeNote, nil)
	assert.Error(t, err)

	_, err = idx.Add(ctx, "some content", "bogus_type", nil)
	assert.Error(t, err)
}

func TestMemoryIndexAddEmbedderFailure(t *testing.T) {
	embedder := newTestEmbedder()
	embedder.err = errors.New("embedding service down")
	idx := NewMemoryIndex(embedder, nil)

	_, err := idx.Add(context.Background(), "apple", types.DocTypeKnowledgeNote, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding service down")
}

func TestMemoryIndexSearchOrdering(t *testing.T) {
	idx := NewMemoryIndex(newTestEmbedder(), nil)
	ctx := context.Background()

	_, err := idx.Add(ctx, "apple apple apple", types.DocTypeKnowledgeNote, nil)
	require.NoError(t, err)
	_, err = idx.Add(ctx, "apple banana banana", types.DocTypeKnowledgeNote, nil)
	require.NoError(t, err)
	_, err = idx.Add(ctx, "cherry cherry cherry", types.DocTypeKnowledgeNote, nil)
	require.NoError(t, err)

	matches, err := idx.Search(ctx, "apple", 10, nil)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, "apple apple apple", matches[0].Document.Content)
	assert.InDelta(t, 1.0, matches[0].Similarity, 1e-9)
	assert.Equal(t, "apple banana banana", matches[1].Document.Content)
	assert.Greater(t, matches[1].Similarity, matches[2].Similarity)
	assert.InDelta(t, 0, matches[2].Similarity, 1e-9)
}

func TestMemoryIndexSearchTopK(t *testing.T) {
	idx := NewMemoryIndex(newTestEmbedder(), nil)
	ctx := context.Background()

	for _, content := range []string{"apple one", "apple two", "apple three", "apple four"} {
		_, err := idx.Add(ctx, content, types.DocTypeConversation, nil)
		require.NoError(t, err)
	}

	matches, err := idx.Search(ctx, "apple", 2, nil)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = idx.Search(ctx, "apple", 0, nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMemoryIndexSearchFilter(t *testing.T) {
	idx := NewMemoryIndex(newTestEmbedder(), nil)
	ctx := context.Background()

	_, err := idx.Add(ctx, "apple pie recipe", types.DocTypeKnowledgeNote, map[string]string{"topic": "cooking"})
	require.NoError(t, err)
	_, err = idx.Add(ctx, "apple computer history", types.DocTypeKnowledgeNote, map[string]string{"topic": "tech"})
	require.NoError(t, err)

	matches, err := idx.Search(ctx, "apple", 10, map[string]string{"topic": "tech"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "apple computer history", matches[0].Document.Content)

	matches, err = idx.Search(ctx, "apple", 10, map[string]string{"topic": "missing"})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMemoryIndexChunksShareDocID(t *testing.T) {
	idx := NewMemoryIndex(newTestEmbedder(), nil)
	idx.chunker = &Chunker{MaxChunkSize: 10, Overlap: 0}
	ctx := context.Background()

	content := "Apple sentence number one here. Banana sentence number two here. Cherry sentence number three here."
	docID, err := idx.Add(ctx, content, types.DocTypeDocumentation, nil)
	require.NoError(t, err)

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	require.Greater(t, n, 1, "expected content to be chunked")

	matches, err := idx.Search(ctx, "banana", n, nil)
	require.NoError(t, err)
	require.Len(t, matches, n)

	for _, m := range matches {
		assert.Equal(t, docID, m.Document.Metadata["doc_id"])
		assert.True(t, strings.HasPrefix(m.Document.ID, docID))
		assert.Contains(t, m.Document.Metadata, "chunk_index")
	}
}

func TestMemoryIndexDeleteOlderThan(t *testing.T) {
	idx := NewMemoryIndex(newTestEmbedder(), nil)
	ctx := context.Background()

	_, err := idx.Add(ctx, "apple old", types.DocTypeConversation, nil)
	require.NoError(t, err)

	removed, err := idx.DeleteOlderThan(ctx, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	removed, err = idx.DeleteOlderThan(ctx, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestMemoryIndexPersistAndLoad(t *testing.T) {
	store, err := sqlitestore.NewStore(":memory:")
	require.NoError(t, err)

	embedder := newTestEmbedder()
	idx := NewMemoryIndex(embedder, store)
	ctx := context.Background()

	_, err = idx.Add(ctx, "apple banana", types.DocTypeKnowledgeNote, map[string]string{"source": "test"})
	require.NoError(t, err)

	// A fresh index backed by the same store sees the document without
	// re-embedding it.
	reloaded := NewMemoryIndex(newTestEmbedder(), store)
	require.NoError(t, reloaded.Load(ctx))

	n, err := reloaded.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	matches, err := reloaded.Search(ctx, "banana", 1, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "apple banana", matches[0].Document.Content)
	assert.Equal(t, "test", matches[0].Document.Metadata["source"])
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	// Degenerate inputs score zero.
	assert.Zero(t, CosineSimilarity(nil, nil))
	assert.Zero(t, CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}

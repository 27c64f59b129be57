package rag

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelegend/cogito/internal/conversation"
	"github.com/codelegend/cogito/internal/knowledge"
	"github.com/codelegend/cogito/internal/vector"
	"github.com/codelegend/cogito/pkg/types"
)

func TestFormatForPromptSections(t *testing.T) {
	graph := seededGraph(t)
	idx := &fakeIndex{matches: []vector.Match{match("docker networking uses bridges", 0.9)}}
	log := conversation.NewLog(100, nil)
	ctx := context.Background()
	require.NoError(t, log.Append(ctx, "s1", "user", "what about docker?"))

	r := NewRetriever(idx, graph, log, testConfig())
	c := r.Retrieve(ctx, "docker", "s1", DefaultOptions())

	out := r.FormatForPrompt(c, 4000)

	assert.Contains(t, out, "RELEVANT CONVERSATIONS:")
	assert.Contains(t, out, "[Score: 0.90] docker networking uses bridges")
	assert.Contains(t, out, "RELATED CONCEPTS:")
	assert.Contains(t, out, "docker (tool)")
	assert.Contains(t, out, "KNOWLEDGE RELATIONSHIPS:")
	assert.Contains(t, out, "docker --related_to--> docker-compose")
	assert.Contains(t, out, "RECENT CONVERSATION:")
	assert.Contains(t, out, "user: what about docker?")
	assert.Contains(t, out, "Context retrieved in")
	assert.Contains(t, out, "Relevance score:")
}

func TestFormatForPromptEmptyContext(t *testing.T) {
	r := NewRetriever(nil, nil, nil, testConfig())
	c := r.Retrieve(context.Background(), "q", "", DefaultOptions())

	out := r.FormatForPrompt(c, 4000)

	assert.NotContains(t, out, "RELEVANT CONVERSATIONS:")
	assert.Contains(t, out, "Estimated tokens: 0")
}

func TestFormatForPromptTruncatesLongContent(t *testing.T) {
	long := strings.Repeat("w", 500)
	idx := &fakeIndex{matches: []vector.Match{match(long, 0.9)}}
	r := NewRetriever(idx, nil, nil, testConfig())

	c := r.Retrieve(context.Background(), "q", "", DefaultOptions())
	out := r.FormatForPrompt(c, 4000)

	assert.Contains(t, out, strings.Repeat("w", 300)+"...")
	assert.NotContains(t, out, strings.Repeat("w", 301))
}

func TestFormatForPromptBudgetCapsSemantic(t *testing.T) {
	// Each match is ~60 words; a tiny budget admits only the first.
	content := strings.Repeat("word ", 60)
	idx := &fakeIndex{matches: []vector.Match{match(content+"a", 0.9), match(content+"b", 0.8), match(content+"c", 0.7)}}
	r := NewRetriever(idx, nil, nil, testConfig())

	c := r.Retrieve(context.Background(), "q", "", DefaultOptions())
	out := r.FormatForPrompt(c, 100)

	assert.Equal(t, 1, strings.Count(out, "[Score:"))
}

func TestFormatForPromptMetadataAlwaysPresent(t *testing.T) {
	idx := &fakeIndex{matches: []vector.Match{match("content here", 0.9)}}
	r := NewRetriever(idx, nil, nil, testConfig())

	c := r.Retrieve(context.Background(), "q", "", DefaultOptions())
	// A budget of 1 token still yields the trailing metadata line.
	out := r.FormatForPrompt(c, 1)

	assert.Contains(t, out, "Estimated tokens:")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "]"))
}

func TestFormatForPromptDefaultBudget(t *testing.T) {
	r := NewRetriever(nil, nil, nil, testConfig())
	c := &Context{Query: "q", RetrievalTime: 50 * time.Millisecond}

	out := r.FormatForPrompt(c, 0)
	assert.Contains(t, out, "Context retrieved in 0.05s")
}

func TestAugmentPrompt(t *testing.T) {
	graph := knowledge.NewGraph(nil)
	_, err := graph.AddEntity(context.Background(), "redis", types.EntityTypeDatabase, nil)
	require.NoError(t, err)

	r := NewRetriever(nil, graph, nil, testConfig())

	prompt, err := r.AugmentPrompt(context.Background(), "redis", "s1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "Context from knowledge base:"))
	assert.Contains(t, prompt, "redis (database)")
	assert.Contains(t, prompt, "User query: redis")
	assert.Contains(t, prompt, "incorporate it naturally")
}

func TestAugmentPromptImplementsAugmenter(t *testing.T) {
	// Compile-time check that the retriever satisfies the orchestrator's
	// augmenter contract.
	var _ interface {
		AugmentPrompt(ctx context.Context, query, sessionID string) (string, error)
	} = NewRetriever(nil, nil, nil, testConfig())
}

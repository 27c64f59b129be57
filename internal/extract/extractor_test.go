package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelegend/cogito/internal/knowledge"
	"github.com/codelegend/cogito/pkg/types"
)

func TestExtractRecognizesTerms(t *testing.T) {
	e := NewKnowledgeExtractor(nil)

	candidates := e.Extract("I'm building a Django app with PostgreSQL and deploying it with Docker.")

	require.Len(t, candidates, 3)
	assert.Equal(t, Candidate{Name: "django", Type: types.EntityTypeFramework}, candidates[0])
	assert.Equal(t, Candidate{Name: "docker", Type: types.EntityTypeTool}, candidates[1])
	assert.Equal(t, Candidate{Name: "postgresql", Type: types.EntityTypeDatabase}, candidates[2])
}

func TestExtractStripsPunctuation(t *testing.T) {
	e := NewKnowledgeExtractor(nil)

	candidates := e.Extract("Use python, docker! (and git).")

	require.Len(t, candidates, 3)
	assert.Equal(t, "docker", candidates[0].Name)
	assert.Equal(t, "git", candidates[1].Name)
	assert.Equal(t, "python", candidates[2].Name)
}

func TestExtractDeduplicates(t *testing.T) {
	e := NewKnowledgeExtractor(nil)

	candidates := e.Extract("python python Python PYTHON")

	require.Len(t, candidates, 1)
	assert.Equal(t, "python", candidates[0].Name)
}

func TestExtractNoMatches(t *testing.T) {
	e := NewKnowledgeExtractor(nil)

	assert.Empty(t, e.Extract("the weather is lovely today"))
	assert.Empty(t, e.Extract(""))
}

func TestApplyWritesEntitiesAndRelationships(t *testing.T) {
	graph := knowledge.NewGraph(nil)
	e := NewKnowledgeExtractor(graph)
	ctx := context.Background()

	ids, err := e.Apply(ctx, "Training a pytorch model, tracked with git, served via fastapi.", "session-1")
	require.NoError(t, err)
	require.Len(t, ids, 3)

	stats := graph.Stats()
	assert.Equal(t, 3, stats.TotalEntities)
	// Pairwise links between all three candidates.
	assert.Equal(t, 3, stats.TotalRelationships)

	entities := graph.FindEntityByName("pytorch", types.EntityTypeLibrary)
	require.Len(t, entities, 1)
	assert.Equal(t, "session-1", entities[0].Properties["extracted_from"])
}

func TestApplyUpsertsOnRepeat(t *testing.T) {
	graph := knowledge.NewGraph(nil)
	e := NewKnowledgeExtractor(graph)
	ctx := context.Background()

	_, err := e.Apply(ctx, "docker and kubernetes", "s1")
	require.NoError(t, err)
	_, err = e.Apply(ctx, "more docker, more kubernetes", "s2")
	require.NoError(t, err)

	assert.Equal(t, 2, graph.Stats().TotalEntities)
}

func TestApplyNothingToDo(t *testing.T) {
	graph := knowledge.NewGraph(nil)
	e := NewKnowledgeExtractor(graph)

	ids, err := e.Apply(context.Background(), "nothing technical here", "s1")
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Zero(t, graph.Stats().TotalEntities)
}

func TestRunConsumesTurns(t *testing.T) {
	graph := knowledge.NewGraph(nil)
	e := NewKnowledgeExtractor(graph)
	ctx := context.Background()

	turns := make(chan Turn, 2)
	turns <- Turn{Text: "learning react", Source: "s1"}
	turns <- Turn{Text: "and also vue", Source: "s1"}
	close(turns)

	done := make(chan struct{})
	go func() {
		e.Run(ctx, turns)
		close(done)
	}()
	<-done

	assert.Equal(t, 2, graph.Stats().TotalEntities)
}

func TestRunStopsOnCancel(t *testing.T) {
	graph := knowledge.NewGraph(nil)
	e := NewKnowledgeExtractor(graph)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		e.Run(ctx, make(chan Turn))
		close(done)
	}()
	<-done
}

// Package extract pulls programming-related entities out of free text and
// records them in the knowledge graph. Extraction is keyword-based and
// best-effort: it enriches the graph over time but a failed write never
// fails the turn that produced the text.
package extract

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/codelegend/cogito/internal/knowledge"
	"github.com/codelegend/cogito/pkg/types"
)

// relationWeight is the default weight for co-mention edges.
const relationWeight = 0.7

// entityLexicon maps recognized terms to their entity type.
var entityLexicon = map[string]string{
	"python":     types.EntityTypeTechnology,
	"javascript": types.EntityTypeTechnology,
	"java":       types.EntityTypeTechnology,
	"c++":        types.EntityTypeTechnology,
	"react":      types.EntityTypeFramework,
	"vue":        types.EntityTypeFramework,
	"angular":    types.EntityTypeFramework,
	"django":     types.EntityTypeFramework,
	"flask":      types.EntityTypeFramework,
	"fastapi":    types.EntityTypeFramework,
	"streamlit":  types.EntityTypeFramework,
	"numpy":      types.EntityTypeLibrary,
	"pandas":     types.EntityTypeLibrary,
	"tensorflow": types.EntityTypeLibrary,
	"pytorch":    types.EntityTypeLibrary,
	"git":        types.EntityTypeTool,
	"docker":     types.EntityTypeTool,
	"kubernetes": types.EntityTypeTool,
	"postgresql": types.EntityTypeDatabase,
	"sqlite":     types.EntityTypeDatabase,
	"redis":      types.EntityTypeDatabase,
}

// Candidate is a recognized term with its inferred entity type.
type Candidate struct {
	Name string
	Type string
}

// Turn is one piece of text to extract from, queued for async processing.
type Turn struct {
	Text   string
	Source string
}

// KnowledgeExtractor recognizes lexicon terms in text and writes them to a
// knowledge graph together with co-mention relationships.
type KnowledgeExtractor struct {
	graph *knowledge.Graph
}

// NewKnowledgeExtractor creates an extractor writing to graph.
func NewKnowledgeExtractor(graph *knowledge.Graph) *KnowledgeExtractor {
	return &KnowledgeExtractor{graph: graph}
}

// Extract returns the recognized candidates in text, at most one per
// distinct term, sorted by name.
func (e *KnowledgeExtractor) Extract(text string) []Candidate {
	seen := make(map[string]bool)
	var candidates []Candidate

	for _, word := range strings.Fields(strings.ToLower(text)) {
		term := strings.Trim(word, ".,!?()[]{}\";:")
		entityType, ok := entityLexicon[term]
		if !ok || seen[term] {
			continue
		}
		seen[term] = true
		candidates = append(candidates, Candidate{Name: term, Type: entityType})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Name < candidates[j].Name
	})
	return candidates
}

// Apply extracts candidates from text, upserts them as entities, and links
// every pair with a related_to edge. Individual relationship failures are
// logged and skipped so one bad edge cannot abort the rest.
func (e *KnowledgeExtractor) Apply(ctx context.Context, text, source string) ([]string, error) {
	candidates := e.Extract(text)
	if len(candidates) == 0 {
		return nil, nil
	}

	props := map[string]any{
		"extracted_from":       source,
		"extraction_timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		id, err := e.graph.AddEntity(ctx, c.Name, c.Type, props)
		if err != nil {
			log.Printf("[extract] failed to add entity %q: %v", c.Name, err)
			continue
		}
		ids = append(ids, id)
	}

	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			_, err := e.graph.AddRelationship(ctx, ids[i], ids[j], types.RelRelatedTo, relationWeight, nil)
			if err != nil && !errors.Is(err, knowledge.ErrInvalidReference) {
				log.Printf("[extract] failed to link %s -> %s: %v", ids[i], ids[j], err)
			}
		}
	}

	return ids, nil
}

// Run consumes turns until the channel closes or ctx is cancelled.
// Intended to be launched as a goroutine for async extraction.
func (e *KnowledgeExtractor) Run(ctx context.Context, turns <-chan Turn) {
	for {
		select {
		case <-ctx.Done():
			return
		case turn, ok := <-turns:
			if !ok {
				return
			}
			if _, err := e.Apply(ctx, turn.Text, turn.Source); err != nil {
				log.Printf("[extract] extraction failed: %v", err)
			}
		}
	}
}

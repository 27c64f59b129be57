// Package rag assembles retrieval-augmented context for a query from three
// sources: the vector index, the knowledge graph, and recent conversation
// history. Retrieval is resilient: a failing source contributes nothing
// rather than failing the query.
package rag

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/codelegend/cogito/internal/config"
	"github.com/codelegend/cogito/internal/conversation"
	"github.com/codelegend/cogito/internal/knowledge"
	"github.com/codelegend/cogito/internal/vector"
	"github.com/codelegend/cogito/pkg/types"
)

// Source weights in the relevance blend.
const (
	semanticWeight     = 0.4
	knowledgeWeight    = 0.3
	conversationWeight = 0.3
)

// Options selects which sources a Retrieve call consults.
type Options struct {
	IncludeSemantic     bool
	IncludeKnowledge    bool
	IncludeConversation bool
}

// DefaultOptions consults every source.
func DefaultOptions() Options {
	return Options{IncludeSemantic: true, IncludeKnowledge: true, IncludeConversation: true}
}

// Context is the retrieved material for one query.
type Context struct {
	Query                  string                `json:"query"`
	SemanticMatches        []vector.Match        `json:"semantic_matches"`
	KnowledgeEntities      []*types.Entity       `json:"knowledge_entities"`
	KnowledgeRelationships []*types.Relationship `json:"knowledge_relationships"`
	ConversationHistory    []types.Message       `json:"conversation_history"`
	Summary                string                `json:"summary"`
	RelevanceScore         float64               `json:"relevance_score"`
	RetrievalTime          time.Duration         `json:"retrieval_time"`
}

// Retriever pulls context from the vector index, knowledge graph, and
// conversation log. Any of the three may be nil, which disables that
// source.
type Retriever struct {
	index         vector.Index
	graph         *knowledge.Graph
	conversations *conversation.Log
	cfg           config.RetrievalConfig
}

// NewRetriever creates a retriever over the given sources.
func NewRetriever(index vector.Index, graph *knowledge.Graph, conversations *conversation.Log, cfg config.RetrievalConfig) *Retriever {
	return &Retriever{
		index:         index,
		graph:         graph,
		conversations: conversations,
		cfg:           cfg,
	}
}

// Retrieve gathers context for a query. Each source is independent: a
// failure in one is logged and the others still contribute, so the result
// is at worst an empty context, never an error.
func (r *Retriever) Retrieve(ctx context.Context, query, sessionID string, opts Options) *Context {
	start := time.Now()
	result := &Context{Query: query}

	if opts.IncludeSemantic && r.index != nil {
		var filter map[string]string
		if sessionID != "" {
			filter = map[string]string{"session_id": sessionID}
		}
		matches, err := r.index.Search(ctx, query, r.cfg.MaxSemanticResults, filter)
		if err != nil {
			log.Printf("[rag] semantic search failed: %v", err)
		} else {
			for _, m := range matches {
				if m.Similarity >= r.cfg.MinSimilarity {
					result.SemanticMatches = append(result.SemanticMatches, m)
				}
			}
		}
	}

	if opts.IncludeKnowledge && r.graph != nil {
		result.KnowledgeEntities = r.graph.SearchEntities(query, r.cfg.MaxKnowledgeEntities)
		if len(result.KnowledgeEntities) > 0 {
			ids := make([]string, len(result.KnowledgeEntities))
			for i, e := range result.KnowledgeEntities {
				ids[i] = e.ID
			}
			result.KnowledgeRelationships = r.graph.RelationshipsBetween(ids)
		}
	}

	if opts.IncludeConversation && r.conversations != nil && sessionID != "" {
		result.ConversationHistory = r.conversations.Recent(sessionID, r.cfg.ConversationWindow)
	}

	result.RelevanceScore = r.relevance(result)
	result.Summary = summarize(result)
	result.RetrievalTime = time.Since(start)
	return result
}

// relevance blends per-source scores: average semantic similarity, entity
// coverage against the configured cap, and conversation window fill.
func (r *Retriever) relevance(c *Context) float64 {
	var semanticScore float64
	if len(c.SemanticMatches) > 0 {
		var sum float64
		for _, m := range c.SemanticMatches {
			sum += m.Similarity
		}
		semanticScore = sum / float64(len(c.SemanticMatches))
	}

	var knowledgeScore float64
	if r.cfg.MaxKnowledgeEntities > 0 {
		knowledgeScore = minF(float64(len(c.KnowledgeEntities))/float64(r.cfg.MaxKnowledgeEntities), 1.0)
	}

	var conversationScore float64
	if r.cfg.ConversationWindow > 0 {
		conversationScore = minF(float64(len(c.ConversationHistory))/float64(r.cfg.ConversationWindow), 1.0)
	}

	return semanticScore*semanticWeight + knowledgeScore*knowledgeWeight + conversationScore*conversationWeight
}

// summarize builds the human-readable context summary.
func summarize(c *Context) string {
	var parts []string

	if n := len(c.SemanticMatches); n > 0 {
		var sum float64
		for _, m := range c.SemanticMatches {
			sum += m.Similarity
		}
		parts = append(parts, fmt.Sprintf("Found %d semantically similar documents (avg relevance: %.2f)", n, sum/float64(n)))
	}

	if n := len(c.KnowledgeEntities); n > 0 {
		counts := make(map[string]int)
		for _, e := range c.KnowledgeEntities {
			counts[e.Type]++
		}
		parts = append(parts, fmt.Sprintf("Found %d related entities: %s", n, countSummary(counts)))
	}

	if n := len(c.KnowledgeRelationships); n > 0 {
		counts := make(map[string]int)
		for _, rel := range c.KnowledgeRelationships {
			counts[rel.Type]++
		}
		parts = append(parts, fmt.Sprintf("Found %d relationships: %s", n, countSummary(counts)))
	}

	if n := len(c.ConversationHistory); n > 0 {
		parts = append(parts, fmt.Sprintf("Available conversation history: %d messages", n))
	}

	if len(parts) == 0 {
		return "No relevant context found in knowledge base"
	}
	return strings.Join(parts, "; ")
}

func countSummary(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%d %s", counts[k], k))
	}
	return strings.Join(parts, ", ")
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

package rag

import (
	"context"
	"fmt"
	"strings"
)

// Per-source shares of the prompt token budget. Sources are packed
// greedily in order; conversation takes what remains.
const (
	semanticBudgetShare  = 0.4
	entityBudgetShare    = 0.6 // cumulative: semantic + 20% entities
	relationBudgetShare  = 0.9 // cumulative: + 10% relationships
	maxSemanticSnippets  = 3
	maxEntityMentions    = 10
	maxRelationMentions  = 5
	maxConversationTurns = 3
	snippetLimit         = 300
	messageLimit         = 150
)

// FormatForPrompt renders retrieved context as prompt text within an
// approximate token budget. Each source gets a bounded share; the trailing
// metadata line is always appended and may exceed the budget.
func (r *Retriever) FormatForPrompt(c *Context, maxTokens int) string {
	if maxTokens <= 0 {
		maxTokens = r.cfg.ContextTokenBudget
	}

	var parts []string
	budget := float64(maxTokens)
	estimated := 0

	if len(c.SemanticMatches) > 0 {
		parts = append(parts, "RELEVANT CONVERSATIONS:")
		for i, m := range c.SemanticMatches {
			if i >= maxSemanticSnippets {
				break
			}
			content := truncate(m.Document.Content, snippetLimit)
			parts = append(parts, fmt.Sprintf("%d. [Score: %.2f] %s", i+1, m.Similarity, content))
			estimated += len(strings.Fields(content)) + 10

			if float64(estimated) > budget*semanticBudgetShare {
				break
			}
		}
	}

	if len(c.KnowledgeEntities) > 0 && float64(estimated) < budget*0.8 {
		parts = append(parts, "\nRELATED CONCEPTS:")
		var mentions []string
		for i, e := range c.KnowledgeEntities {
			if i >= maxEntityMentions {
				break
			}
			mention := fmt.Sprintf("%s (%s)", e.Name, e.Type)
			mentions = append(mentions, mention)
			estimated += len(strings.Fields(mention)) + 2

			if float64(estimated) > budget*entityBudgetShare {
				break
			}
		}
		parts = append(parts, strings.Join(mentions, ", "))
	}

	if len(c.KnowledgeRelationships) > 0 && float64(estimated) < budget*relationBudgetShare {
		parts = append(parts, "\nKNOWLEDGE RELATIONSHIPS:")
		for i, rel := range c.KnowledgeRelationships {
			if i >= maxRelationMentions {
				break
			}
			info := fmt.Sprintf("%s --%s--> %s", r.entityLabel(rel.SourceID), rel.Type, r.entityLabel(rel.TargetID))
			parts = append(parts, "- "+info)
			estimated += len(strings.Fields(info)) + 3

			if float64(estimated) > budget*relationBudgetShare {
				break
			}
		}
	}

	if len(c.ConversationHistory) > 0 && float64(estimated) < budget*0.95 {
		parts = append(parts, "\nRECENT CONVERSATION:")
		history := c.ConversationHistory
		if len(history) > maxConversationTurns {
			history = history[len(history)-maxConversationTurns:]
		}
		for _, msg := range history {
			line := fmt.Sprintf("%s: %s", msg.Role, truncate(msg.Content, messageLimit))
			parts = append(parts, line)
			estimated += len(strings.Fields(line)) + 5

			if float64(estimated) > budget {
				break
			}
		}
	}

	formatted := strings.Join(parts, "\n")

	metadata := fmt.Sprintf("[Context retrieved in %.2fs | Relevance score: %.2f | Estimated tokens: %d]",
		c.RetrievalTime.Seconds(), c.RelevanceScore, estimated)
	return formatted + "\n\n" + metadata
}

// AugmentPrompt retrieves context for a query and wraps it with the query
// into a full model prompt. It never fails: an empty context still yields
// a usable prompt.
func (r *Retriever) AugmentPrompt(ctx context.Context, query, sessionID string) (string, error) {
	retrieved := r.Retrieve(ctx, query, sessionID, DefaultOptions())
	formatted := r.FormatForPrompt(retrieved, 0)

	prompt := fmt.Sprintf(`Context from knowledge base:
%s

User query: %s

Please provide a response that takes into account the relevant context above.
If the context provides useful information, incorporate it naturally into your response.
If the context is not relevant, you can ignore it and respond normally.`, formatted, query)

	return prompt, nil
}

// entityLabel resolves an entity ID to its name for display, falling back
// to the raw ID.
func (r *Retriever) entityLabel(id string) string {
	if r.graph != nil {
		if e, ok := r.graph.Entity(id); ok {
			return e.Name
		}
	}
	return id
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// Package reasoning implements structured chain-of-thought generation:
// deciding when a message warrants reasoning, selecting a strategy,
// composing the prompt, and parsing the model's response into a chain of
// discrete steps with a heuristic confidence score.
package reasoning

import (
	"strings"

	"github.com/codelegend/cogito/internal/textsig"
	"github.com/codelegend/cogito/pkg/types"
)

// complexQuestionTypes are the question categories that benefit from
// structured reasoning.
var complexQuestionTypes = map[string]bool{
	"procedural":      true,
	"explanatory":     true,
	"troubleshooting": true,
	"design":          true,
	"comparative":     true,
}

// complexityKeywords signal problems that need multi-step treatment.
var complexityKeywords = []string{
	"solve", "calculate", "analyze", "debug", "optimize", "design",
	"implement", "explain", "how to", "why", "what if", "compare",
	"algorithm", "architecture", "system", "database", "performance",
	"security", "scalability", "integration", "deployment",
	"step by step", "workflow", "refactor",
}

var questionWords = []string{"how", "why", "what", "when", "where", "which"}

// StrategySelector decides whether to reason about a message and which
// strategy to reason with.
type StrategySelector struct {
	analyzer *textsig.Analyzer
}

// NewStrategySelector creates a selector backed by a text signal analyzer.
func NewStrategySelector() *StrategySelector {
	return &StrategySelector{analyzer: textsig.NewAnalyzer()}
}

// ShouldReason reports whether the message would benefit from structured
// reasoning. The heuristics are OR-ed and tuned for recall: it is cheaper
// to reason about a simple message than to answer a hard one flat.
func (s *StrategySelector) ShouldReason(message string) bool {
	if strings.TrimSpace(message) == "" {
		return false
	}

	if complexQuestionTypes[s.analyzer.DetectQuestionType(message)] {
		return true
	}

	lower := strings.ToLower(message)
	hits := 0
	for _, kw := range complexityKeywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	if hits >= 2 {
		return true
	}

	if len(strings.Fields(message)) > 20 {
		return true
	}

	for _, q := range questionWords {
		if strings.Contains(lower, q) {
			return true
		}
	}
	return false
}

// SelectStrategy picks the reasoning strategy for a message. The question
// classifier wins; the keyword fallback table fires only when the
// classifier yields "general".
func (s *StrategySelector) SelectStrategy(message string) types.Strategy {
	switch s.analyzer.DetectQuestionType(message) {
	case "procedural":
		return types.StrategyStepByStep
	case "troubleshooting":
		return types.StrategyReflection
	case "design":
		return types.StrategyProblemDecomposition
	case "explanatory", "definitional", "comparative":
		return types.StrategyChainOfThought
	}

	lower := strings.ToLower(message)

	keywordTables := []struct {
		strategy types.Strategy
		keywords []string
	}{
		{types.StrategyReAct, []string{"search", "look up", "find", "check", "verify", "test"}},
		{types.StrategyProblemDecomposition, []string{"design", "architecture", "system", "build", "create"}},
		{types.StrategyStepByStep, []string{"how to", "tutorial", "guide", "steps", "process"}},
		{types.StrategyReflection, []string{"debug", "fix", "error", "problem", "issue", "analyze"}},
	}

	for _, table := range keywordTables {
		for _, kw := range table.keywords {
			if strings.Contains(lower, kw) {
				return table.strategy
			}
		}
	}
	return types.StrategyChainOfThought
}

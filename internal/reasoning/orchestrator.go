package reasoning

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/codelegend/cogito/internal/llm"
	"github.com/codelegend/cogito/internal/textsig"
	"github.com/codelegend/cogito/pkg/types"
)

// PromptAugmenter injects retrieved context into a prompt before it is
// sent to the model. Augmentation is best-effort: failures fall back to
// the plain message.
type PromptAugmenter interface {
	AugmentPrompt(ctx context.Context, query, sessionID string) (string, error)
}

// Options tunes a single Respond call.
type Options struct {
	// ForceReasoning overrides the selector when non-nil.
	ForceReasoning *bool

	// Strategy pins the reasoning strategy; empty selects automatically.
	Strategy types.Strategy
}

// Orchestrator runs the full reasoning flow: decide, compose, invoke the
// model, parse, record. It keeps an append-only history of chains capped
// at a configurable limit.
type Orchestrator struct {
	generator llm.TextGenerator
	selector  *StrategySelector
	composer  *PromptComposer
	parser    *ResponseParser
	augmenter PromptAugmenter

	mu           sync.RWMutex
	history      []*types.ReasoningChain
	historyLimit int
}

// ChainSummary is one history entry in an analysis export.
type ChainSummary struct {
	Problem            string         `json:"problem"`
	Strategy           types.Strategy `json:"strategy"`
	StepCount          int            `json:"step_count"`
	Confidence         float64        `json:"confidence"`
	EnhancedConfidence *float64       `json:"enhanced_confidence,omitempty"`
	KeyConcepts        []string       `json:"key_concepts,omitempty"`
	QuestionType       string         `json:"question_type,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}

// Analysis summarizes the recorded reasoning history.
type Analysis struct {
	TotalChains               int                    `json:"total_chains"`
	AverageConfidence         float64                `json:"average_confidence"`
	AverageEnhancedConfidence float64                `json:"average_enhanced_confidence"`
	StrategyCounts            map[types.Strategy]int `json:"strategy_counts"`
	Chains                    []ChainSummary         `json:"chains"`
}

// NewOrchestrator creates an orchestrator. augmenter may be nil;
// historyLimit <= 0 disables the cap.
func NewOrchestrator(generator llm.TextGenerator, augmenter PromptAugmenter, historyLimit int) *Orchestrator {
	analyzer := textsig.NewAnalyzer()
	return &Orchestrator{
		generator:    generator,
		selector:     NewStrategySelector(),
		composer:     NewPromptComposer(),
		parser:       NewResponseParser(analyzer),
		augmenter:    augmenter,
		historyLimit: historyLimit,
	}
}

// Respond answers a message. When reasoning applies, the returned chain
// holds the parsed steps and the reply is its final answer; on the skip
// path the model is called directly and the chain is nil. Only transport
// errors propagate.
func (o *Orchestrator) Respond(ctx context.Context, message, sessionID string, opts Options) (string, *types.ReasoningChain, error) {
	if strings.TrimSpace(message) == "" {
		return "", nil, fmt.Errorf("message is required")
	}

	useReasoning := o.selector.ShouldReason(message)
	if opts.ForceReasoning != nil {
		useReasoning = *opts.ForceReasoning
	}

	prompt := o.augment(ctx, message, sessionID)

	if !useReasoning {
		reply, err := o.generator.Complete(ctx, prompt)
		if err != nil {
			return "", nil, fmt.Errorf("completion failed: %w", err)
		}
		return reply, nil, nil
	}

	strategy := opts.Strategy
	if !types.IsValidStrategy(strategy) {
		strategy = o.selector.SelectStrategy(message)
	}

	composed := o.composer.Compose(strategy, prompt)
	raw, err := o.generator.Complete(ctx, composed)
	if err != nil {
		return "", nil, fmt.Errorf("completion failed: %w", err)
	}

	chain := o.parser.Parse(raw, message)
	chain.Strategy = strategy
	o.record(chain)

	reply := chain.FinalAnswer
	if strings.TrimSpace(reply) == "" {
		reply = raw
	}

	log.Printf("[reasoning] %s chain with %d steps (confidence %.2f)", strategy, chain.StepCount(), chain.ConfidenceScore)
	return reply, chain, nil
}

func (o *Orchestrator) augment(ctx context.Context, message, sessionID string) string {
	if o.augmenter == nil {
		return message
	}
	augmented, err := o.augmenter.AugmentPrompt(ctx, message, sessionID)
	if err != nil {
		log.Printf("[reasoning] context augmentation failed, using plain message: %v", err)
		return message
	}
	return augmented
}

func (o *Orchestrator) record(chain *types.ReasoningChain) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.history = append(o.history, chain)
	if o.historyLimit > 0 && len(o.history) > o.historyLimit {
		o.history = o.history[len(o.history)-o.historyLimit:]
	}
}

// History returns a copy of the recorded chains, oldest first.
func (o *Orchestrator) History() []*types.ReasoningChain {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]*types.ReasoningChain, len(o.history))
	copy(out, o.history)
	return out
}

// ExportAnalysis aggregates the history: totals, average confidences, and
// per-strategy counts.
func (o *Orchestrator) ExportAnalysis() Analysis {
	o.mu.RLock()
	defer o.mu.RUnlock()

	analysis := Analysis{
		StrategyCounts: make(map[types.Strategy]int, len(types.ValidStrategies)),
		Chains:         make([]ChainSummary, 0, len(o.history)),
	}

	var confidenceSum, enhancedSum float64
	for _, chain := range o.history {
		analysis.StrategyCounts[chain.Strategy]++
		confidenceSum += chain.ConfidenceScore
		if chain.EnhancedConfidence != nil {
			enhancedSum += *chain.EnhancedConfidence
		}
		analysis.Chains = append(analysis.Chains, ChainSummary{
			Problem:            chain.Problem,
			Strategy:           chain.Strategy,
			StepCount:          chain.StepCount(),
			Confidence:         chain.ConfidenceScore,
			EnhancedConfidence: chain.EnhancedConfidence,
			KeyConcepts:        chain.KeyConcepts,
			QuestionType:       chain.QuestionType,
			CreatedAt:          chain.CreatedAt,
		})
	}

	analysis.TotalChains = len(o.history)
	if analysis.TotalChains > 0 {
		analysis.AverageConfidence = confidenceSum / float64(analysis.TotalChains)
		analysis.AverageEnhancedConfidence = enhancedSum / float64(analysis.TotalChains)
	}
	return analysis
}

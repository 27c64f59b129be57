package types

import "time"

// ReasoningStep is an individual step in a reasoning chain.
// Steps are created by the response parser, one per detected step in the
// model's output, and are immutable once created.
type ReasoningStep struct {
	// StepNumber orders the step within its chain (1-based). Gaps are
	// tolerated but not expected.
	StepNumber int `json:"step_number"`

	// Thought is the reasoning content of the step.
	Thought string `json:"thought"`

	// Action is the action taken in ReAct-style steps (nil otherwise).
	Action *string `json:"action,omitempty"`

	// Observation is the observed outcome in ReAct-style steps (nil otherwise).
	Observation *string `json:"observation,omitempty"`

	// Confidence is the parser's per-step confidence (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Timestamp is when the step was parsed.
	Timestamp time.Time `json:"timestamp"`
}

// ReasoningChain is the complete parsed reasoning for a single problem.
// Chains are created once per reasoning invocation and never mutated after
// construction; the orchestrator appends them to its history list.
type ReasoningChain struct {
	// Problem is the original problem statement.
	Problem string `json:"problem"`

	// Strategy is the reasoning approach that produced this chain.
	Strategy Strategy `json:"strategy"`

	// Steps are the parsed reasoning steps, sorted ascending by StepNumber.
	Steps []ReasoningStep `json:"steps"`

	// FinalAnswer is the extracted answer text (never empty; worst case the
	// tail of the raw response).
	FinalAnswer string `json:"final_answer"`

	// ConfidenceScore is a heuristic reasoning-quality score (0.0 to 1.0).
	// It is not a calibrated probability.
	ConfidenceScore float64 `json:"confidence_score"`

	// CreatedAt is when the chain was constructed.
	CreatedAt time.Time `json:"created_at"`

	// EnhancedConfidence is the text-signal-adjusted confidence, when a
	// signal analyzer was available during parsing (nil otherwise).
	EnhancedConfidence *float64 `json:"enhanced_confidence,omitempty"`

	// KeyConcepts is the union of key terms extracted from the problem and
	// the response.
	KeyConcepts []string `json:"key_concepts,omitempty"`

	// QuestionType is the detected question category of the problem
	// (empty when no analyzer was available).
	QuestionType string `json:"question_type,omitempty"`
}

// StepCount returns the number of reasoning steps in the chain.
func (c *ReasoningChain) StepCount() int {
	return len(c.Steps)
}

// Message is a single conversation turn used for retrieval context.
type Message struct {
	// Role is the speaker role ("user" or "assistant").
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`

	// Timestamp is when the message was recorded.
	Timestamp time.Time `json:"timestamp"`
}

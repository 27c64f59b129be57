// Package llm provides text-generation and embedding clients for the
// providers Cogito supports (Ollama, OpenAI, Anthropic). All outbound calls
// are wrapped in a circuit breaker; retries and timeouts live here, never
// in callers.
package llm

import "context"

// TextGenerator is the interface for LLM text completion. The reasoning
// orchestrator sends a composed prompt and receives the raw response text.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
	GetModel() string
}

// EmbeddingGenerator is the interface for generating vector embeddings,
// used by the vector index.
type EmbeddingGenerator interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	GetModel() string
}

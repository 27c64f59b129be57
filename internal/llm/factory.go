package llm

import (
	"fmt"

	"github.com/codelegend/cogito/internal/config"
)

// NewTextGenerator creates the TextGenerator for the configured provider.
func NewTextGenerator(cfg config.LLMConfig) (TextGenerator, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel}), nil
	case "anthropic":
		return NewAnthropicClient(AnthropicConfig{APIKey: cfg.AnthropicAPIKey, Model: cfg.AnthropicModel}), nil
	case "ollama", "":
		return NewOllamaClient(OllamaConfig{BaseURL: cfg.OllamaURL, Model: cfg.OllamaModel}), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.Provider)
	}
}

// NewEmbeddingGenerator creates the EmbeddingGenerator for the configured
// provider. Anthropic has no embeddings API, so the anthropic provider
// pairs with Ollama embeddings when an Ollama URL is configured; otherwise
// it returns an error.
func NewEmbeddingGenerator(cfg config.LLMConfig) (EmbeddingGenerator, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIEmbeddingClient(OpenAIEmbeddingConfig{APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIEmbeddingModel}), nil
	case "ollama", "", "anthropic":
		if cfg.OllamaURL == "" && cfg.Provider == "anthropic" {
			return nil, fmt.Errorf("anthropic provider needs an ollama url for embeddings")
		}
		return NewOllamaClient(OllamaConfig{BaseURL: cfg.OllamaURL, Model: cfg.OllamaEmbeddingModel}), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %q", cfg.Provider)
	}
}

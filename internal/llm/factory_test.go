package llm

import (
	"testing"

	"github.com/codelegend/cogito/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTextGenerator_ProviderSelection(t *testing.T) {
	gen, err := NewTextGenerator(config.LLMConfig{Provider: "ollama", OllamaModel: "llama3.1:8b"})
	require.NoError(t, err)
	assert.IsType(t, &OllamaClient{}, gen)
	assert.Equal(t, "llama3.1:8b", gen.GetModel())

	gen, err = NewTextGenerator(config.LLMConfig{Provider: "openai", OpenAIModel: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, gen)

	gen, err = NewTextGenerator(config.LLMConfig{Provider: "anthropic"})
	require.NoError(t, err)
	assert.IsType(t, &AnthropicClient{}, gen)
}

func TestNewTextGenerator_EmptyProviderDefaultsToOllama(t *testing.T) {
	gen, err := NewTextGenerator(config.LLMConfig{})
	require.NoError(t, err)
	assert.IsType(t, &OllamaClient{}, gen)
}

func TestNewTextGenerator_UnknownProvider(t *testing.T) {
	_, err := NewTextGenerator(config.LLMConfig{Provider: "palm"})
	assert.Error(t, err)
}

func TestNewEmbeddingGenerator_UsesEmbeddingModel(t *testing.T) {
	gen, err := NewEmbeddingGenerator(config.LLMConfig{
		Provider:             "ollama",
		OllamaEmbeddingModel: "nomic-embed-text",
	})
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", gen.GetModel())
}

func TestNewEmbeddingGenerator_AnthropicNeedsOllamaURL(t *testing.T) {
	_, err := NewEmbeddingGenerator(config.LLMConfig{Provider: "anthropic"})
	assert.Error(t, err)

	gen, err := NewEmbeddingGenerator(config.LLMConfig{
		Provider:             "anthropic",
		OllamaURL:            "http://localhost:11434",
		OllamaEmbeddingModel: "nomic-embed-text",
	})
	require.NoError(t, err)
	assert.IsType(t, &OllamaClient{}, gen)
}

package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req openAIChatRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "why is the sky blue", req.Messages[0].Content)
		assert.Zero(t, req.Temperature)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"scattering"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})
	reply, err := c.Complete(context.Background(), "why is the sky blue")
	require.NoError(t, err)
	assert.Equal(t, "scattering", reply)
}

func TestOpenAIComplete_ErrorStatusSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai returned status 429")
}

func TestOpenAIComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "hello")
	assert.Error(t, err)
}

func TestOpenAIEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.5,-0.25,1]}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIEmbeddingClient(OpenAIEmbeddingConfig{APIKey: "test-key", BaseURL: srv.URL})
	vec, err := c.Embed(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -0.25, 1}, vec)
}

func TestOpenAIEmbed_EmptyVectorIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAIEmbeddingClient(OpenAIEmbeddingConfig{APIKey: "test-key", BaseURL: srv.URL})
	_, err := c.Embed(context.Background(), "some text")
	assert.Error(t, err)
}

func TestAnthropicComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req anthropicMessagesRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, anthropicMaxTokens, req.MaxTokens)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		_, _ = w.Write([]byte(`{"content":[{"text":"an answer"}]}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(AnthropicConfig{APIKey: "test-key", BaseURL: srv.URL})
	reply, err := c.Complete(context.Background(), "a question")
	require.NoError(t, err)
	assert.Equal(t, "an answer", reply)
}

func TestAnthropicComplete_EmptyContentIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(AnthropicConfig{APIKey: "test-key", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "a question")
	assert.Error(t, err)
}

func TestClientDefaults(t *testing.T) {
	chat := NewOpenAIClient(OpenAIConfig{})
	assert.Equal(t, "gpt-4o-mini", chat.GetModel())
	assert.Equal(t, "https://api.openai.com", chat.cfg.BaseURL)

	embed := NewOpenAIEmbeddingClient(OpenAIEmbeddingConfig{})
	assert.Equal(t, "text-embedding-3-small", embed.GetModel())

	claude := NewAnthropicClient(AnthropicConfig{})
	assert.Equal(t, "claude-3-5-sonnet-20241022", claude.GetModel())
	assert.Equal(t, "https://api.anthropic.com", claude.cfg.BaseURL)
}

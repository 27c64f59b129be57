package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// anthropicMaxTokens bounds the response length. Reasoning chains run a
// few hundred tokens per step; five steps plus a summary fit comfortably.
const anthropicMaxTokens = 4096

// AnthropicClient implements TextGenerator over the Anthropic Messages
// API. Like the other chat clients, each reasoning turn is one user-role
// message and all calls go through the circuit breaker. Anthropic provides
// no embeddings API, so the factory pairs this client with Ollama
// embeddings.
type AnthropicClient struct {
	cfg            AnthropicConfig
	client         *http.Client
	circuitBreaker *CircuitBreaker
}

// AnthropicConfig holds Anthropic client configuration.
type AnthropicConfig struct {
	// APIKey authenticates requests.
	APIKey string

	// Model is the model name (default: claude-3-5-sonnet-20241022).
	Model string

	// BaseURL overrides the API endpoint (default: https://api.anthropic.com).
	BaseURL string

	// Timeout is the request timeout. Reasoning completions can be long,
	// so the default is 120s.
	Timeout time.Duration
}

type anthropicMessagesRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicMessagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// NewAnthropicClient creates an Anthropic client, applying defaults for
// any unset configuration values.
func NewAnthropicClient(cfg AnthropicConfig) *AnthropicClient {
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-sonnet-20241022"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &AnthropicClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		circuitBreaker: NewCircuitBreaker(),
	}
}

// Complete sends a single-turn completion and returns the response text.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	result, err := c.circuitBreaker.Execute(ctx, func() (interface{}, error) {
		return c.complete(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			return "", fmt.Errorf("anthropic circuit breaker open: %w", err)
		}
		return "", err
	}
	return result.(string), nil
}

func (c *AnthropicClient) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	reqBody := anthropicMessagesRequest{
		Model:     c.cfg.Model,
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	headers := map[string]string{
		"x-api-key":         c.cfg.APIKey,
		"anthropic-version": "2023-06-01",
	}
	var respData anthropicMessagesResponse
	if err := postJSON(ctx, c.client, "anthropic", c.cfg.BaseURL+"/v1/messages", headers, reqBody, &respData); err != nil {
		return "", err
	}

	if len(respData.Content) == 0 {
		return "", fmt.Errorf("anthropic returned empty content")
	}
	return respData.Content[0].Text, nil
}

// GetModel returns the configured model name.
func (c *AnthropicClient) GetModel() string {
	return c.cfg.Model
}

var _ TextGenerator = (*AnthropicClient)(nil)

// Package config provides configuration management for Cogito.
// It loads settings from environment variables with the COGITO_ prefix
// and provides sensible defaults for all configuration options.
//
// An optional YAML file can override the defaults: LoadConfigFromFile
// reads the file first and applies any COGITO_ environment variables on top,
// so the precedence is defaults < file < environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings for the Cogito application.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	LLM       LLMConfig       `yaml:"llm"`
	Reasoning ReasoningConfig `yaml:"reasoning"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Security  SecurityConfig  `yaml:"security"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    `yaml:"port"` // Server port (default: 7171)
	Host string `yaml:"host"` // Server host (default: 127.0.0.1)
}

// StorageConfig contains database and storage configuration.
type StorageConfig struct {
	StorageEngine string `yaml:"storage_engine"` // Storage engine: sqlite, postgres (default: sqlite)
	DataPath      string `yaml:"data_path"`      // Path to data directory (default: ./data)
	PostgresDSN   string `yaml:"postgres_dsn"`   // Postgres DSN, required when storage_engine=postgres
}

// LLMConfig contains LLM provider configuration.
type LLMConfig struct {
	Provider             string `yaml:"provider"`               // LLM provider: ollama, openai, anthropic (default: ollama)
	OllamaURL            string `yaml:"ollama_url"`             // Ollama API URL (default: http://localhost:11434)
	OllamaModel          string `yaml:"ollama_model"`           // Ollama model name (default: llama3.1:8b)
	OllamaEmbeddingModel string `yaml:"ollama_embedding_model"` // Ollama embedding model (default: nomic-embed-text)
	OpenAIAPIKey         string `yaml:"openai_api_key"`         // OpenAI API key
	OpenAIModel          string `yaml:"openai_model"`           // OpenAI model name (default: gpt-4o-mini)
	OpenAIEmbeddingModel string `yaml:"openai_embedding_model"` // OpenAI embedding model (default: text-embedding-3-small)
	AnthropicAPIKey      string `yaml:"anthropic_api_key"`      // Anthropic API key
	AnthropicModel       string `yaml:"anthropic_model"`        // Anthropic model name (default: claude-3-5-sonnet-20241022)
}

// ReasoningConfig tunes the chain-of-thought layer.
type ReasoningConfig struct {
	// HistoryLimit caps the orchestrator's in-memory reasoning history (default: 500).
	HistoryLimit int `yaml:"history_limit"`

	// ForceReasoning applies structured reasoning to every question,
	// bypassing the should-reason heuristics.
	ForceReasoning bool `yaml:"force_reasoning"`
}

// RetrievalConfig tunes the RAG context retriever. The similarity threshold
// applies only to the semantic leg; graph and conversation retrieval have
// their own limits.
type RetrievalConfig struct {
	// MaxSemanticResults is the top-K for vector search (default: 5).
	MaxSemanticResults int `yaml:"max_semantic_results"`

	// MaxKnowledgeEntities caps graph entities per query (default: 10).
	MaxKnowledgeEntities int `yaml:"max_knowledge_entities"`

	// MinSimilarity filters vector matches below this score (default: 0.3).
	MinSimilarity float64 `yaml:"min_similarity"`

	// ContextTokenBudget is the maximum estimated token count of formatted
	// context injected into a prompt (default: 4000).
	ContextTokenBudget int `yaml:"context_token_budget"`

	// ConversationWindow is how many recent messages to include (default: 10).
	ConversationWindow int `yaml:"conversation_window"`
}

// SecurityConfig contains security and authentication settings.
type SecurityConfig struct {
	SecurityMode string `yaml:"security_mode"` // Security mode: development, production (default: development)
	APIToken     string `yaml:"api_token"`     // API authentication token
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the COGITO_ prefix.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFromFile loads configuration from a YAML file, then applies
// environment variable overrides on top. Fields absent from the file keep
// their defaults.
func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}

	switch c.Storage.StorageEngine {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unknown storage engine %q", c.Storage.StorageEngine)
	}

	if c.Storage.StorageEngine == "postgres" && c.Storage.PostgresDSN == "" {
		return fmt.Errorf("config: postgres storage engine requires COGITO_POSTGRES_DSN")
	}

	if c.Retrieval.MinSimilarity < 0 || c.Retrieval.MinSimilarity > 1 {
		return fmt.Errorf("config: min_similarity must be in [0,1], got %.2f", c.Retrieval.MinSimilarity)
	}

	return nil
}

// defaultConfig constructs a Config with all defaults applied.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 7171,
			Host: "127.0.0.1",
		},
		Storage: StorageConfig{
			StorageEngine: "sqlite",
			DataPath:      "./data",
		},
		LLM: LLMConfig{
			Provider:             "ollama",
			OllamaURL:            "http://localhost:11434",
			OllamaModel:          "llama3.1:8b",
			OllamaEmbeddingModel: "nomic-embed-text",
			OpenAIModel:          "gpt-4o-mini",
			OpenAIEmbeddingModel: "text-embedding-3-small",
			AnthropicModel:       "claude-3-5-sonnet-20241022",
		},
		Reasoning: ReasoningConfig{
			HistoryLimit: 500,
		},
		Retrieval: RetrievalConfig{
			MaxSemanticResults:   5,
			MaxKnowledgeEntities: 10,
			MinSimilarity:        0.3,
			ContextTokenBudget:   4000,
			ConversationWindow:   10,
		},
		Security: SecurityConfig{
			SecurityMode: "development",
		},
	}
}

// applyEnv overrides config fields from COGITO_ environment variables.
func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnvInt("COGITO_PORT", cfg.Server.Port)
	cfg.Server.Host = getEnv("COGITO_HOST", cfg.Server.Host)

	cfg.Storage.StorageEngine = getEnv("COGITO_STORAGE_ENGINE", cfg.Storage.StorageEngine)
	cfg.Storage.DataPath = getEnv("COGITO_DATA_PATH", cfg.Storage.DataPath)
	cfg.Storage.PostgresDSN = getEnv("COGITO_POSTGRES_DSN", cfg.Storage.PostgresDSN)

	cfg.LLM.Provider = getEnv("COGITO_LLM_PROVIDER", cfg.LLM.Provider)
	cfg.LLM.OllamaURL = getEnv("COGITO_OLLAMA_URL", cfg.LLM.OllamaURL)
	cfg.LLM.OllamaModel = getEnv("COGITO_OLLAMA_MODEL", cfg.LLM.OllamaModel)
	cfg.LLM.OllamaEmbeddingModel = getEnv("COGITO_EMBEDDING_MODEL", cfg.LLM.OllamaEmbeddingModel)
	cfg.LLM.OpenAIAPIKey = getEnv("COGITO_OPENAI_API_KEY", cfg.LLM.OpenAIAPIKey)
	cfg.LLM.OpenAIModel = getEnv("COGITO_OPENAI_MODEL", cfg.LLM.OpenAIModel)
	cfg.LLM.OpenAIEmbeddingModel = getEnv("COGITO_OPENAI_EMBEDDING_MODEL", cfg.LLM.OpenAIEmbeddingModel)
	cfg.LLM.AnthropicAPIKey = getEnv("COGITO_ANTHROPIC_API_KEY", cfg.LLM.AnthropicAPIKey)
	cfg.LLM.AnthropicModel = getEnv("COGITO_ANTHROPIC_MODEL", cfg.LLM.AnthropicModel)

	cfg.Reasoning.HistoryLimit = getEnvInt("COGITO_HISTORY_LIMIT", cfg.Reasoning.HistoryLimit)
	cfg.Reasoning.ForceReasoning = getEnvBool("COGITO_FORCE_REASONING", cfg.Reasoning.ForceReasoning)

	cfg.Retrieval.MaxSemanticResults = getEnvInt("COGITO_MAX_SEMANTIC_RESULTS", cfg.Retrieval.MaxSemanticResults)
	cfg.Retrieval.MaxKnowledgeEntities = getEnvInt("COGITO_MAX_KNOWLEDGE_ENTITIES", cfg.Retrieval.MaxKnowledgeEntities)
	cfg.Retrieval.MinSimilarity = getEnvFloat("COGITO_MIN_SIMILARITY", cfg.Retrieval.MinSimilarity)
	cfg.Retrieval.ContextTokenBudget = getEnvInt("COGITO_CONTEXT_TOKEN_BUDGET", cfg.Retrieval.ContextTokenBudget)
	cfg.Retrieval.ConversationWindow = getEnvInt("COGITO_CONVERSATION_WINDOW", cfg.Retrieval.ConversationWindow)

	cfg.Security.SecurityMode = getEnv("COGITO_SECURITY_MODE", cfg.Security.SecurityMode)
	cfg.Security.APIToken = getEnv("COGITO_API_TOKEN", cfg.Security.APIToken)
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// If the environment variable exists but cannot be parsed as an integer,
// it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value.
// It recognizes "true", "1", "yes" as true and "false", "0", "no" as false.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "true", "1", "yes", "True", "TRUE":
			return true
		case "false", "0", "no", "False", "FALSE":
			return false
		}
	}
	return defaultValue
}

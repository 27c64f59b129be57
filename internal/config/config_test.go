package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codelegend/cogito/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultHostIsLocalhost(t *testing.T) {
	_ = os.Unsetenv("COGITO_HOST")
	cfg, err := config.LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host,
		"Default host must be 127.0.0.1 for security")
}

func TestLoadConfig_CanOverrideHost(t *testing.T) {
	t.Setenv("COGITO_HOST", "0.0.0.0")
	cfg, err := config.LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

// TestLoadConfig_RetrievalDefaults verifies the retrieval knobs have the
// documented defaults when no environment variables are set.
func TestLoadConfig_RetrievalDefaults(t *testing.T) {
	for _, key := range []string{
		"COGITO_MAX_SEMANTIC_RESULTS",
		"COGITO_MAX_KNOWLEDGE_ENTITIES",
		"COGITO_MIN_SIMILARITY",
		"COGITO_CONTEXT_TOKEN_BUDGET",
		"COGITO_CONVERSATION_WINDOW",
	} {
		_ = os.Unsetenv(key)
	}

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Retrieval.MaxSemanticResults)
	assert.Equal(t, 10, cfg.Retrieval.MaxKnowledgeEntities)
	assert.InDelta(t, 0.3, cfg.Retrieval.MinSimilarity, 1e-9)
	assert.Equal(t, 4000, cfg.Retrieval.ContextTokenBudget)
	assert.Equal(t, 10, cfg.Retrieval.ConversationWindow)
}

func TestLoadConfig_EnvOverridesRetrieval(t *testing.T) {
	t.Setenv("COGITO_MIN_SIMILARITY", "0.55")
	t.Setenv("COGITO_CONTEXT_TOKEN_BUDGET", "2000")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.InDelta(t, 0.55, cfg.Retrieval.MinSimilarity, 1e-9)
	assert.Equal(t, 2000, cfg.Retrieval.ContextTokenBudget)
}

func TestLoadConfig_InvalidEnvIntKeepsDefault(t *testing.T) {
	t.Setenv("COGITO_PORT", "not-a-number")
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 7171, cfg.Server.Port,
		"Unparseable integer env vars must fall back to the default")
}

func TestLoadConfig_ForceReasoningBool(t *testing.T) {
	t.Setenv("COGITO_FORCE_REASONING", "true")
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Reasoning.ForceReasoning)

	t.Setenv("COGITO_FORCE_REASONING", "0")
	cfg, err = config.LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.Reasoning.ForceReasoning)
}

func TestLoadConfig_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("COGITO_STORAGE_ENGINE", "postgres")
	_ = os.Unsetenv("COGITO_POSTGRES_DSN")

	_, err := config.LoadConfig()
	assert.Error(t, err, "postgres engine without a DSN must fail validation")
}

func TestLoadConfig_UnknownEngineRejected(t *testing.T) {
	t.Setenv("COGITO_STORAGE_ENGINE", "etcd")
	_, err := config.LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_MinSimilarityOutOfRange(t *testing.T) {
	t.Setenv("COGITO_MIN_SIMILARITY", "1.5")
	_, err := config.LoadConfig()
	assert.Error(t, err, "min_similarity above 1 must fail validation")
}

// TestLoadConfigFromFile_Overrides verifies YAML values override the defaults.
func TestLoadConfigFromFile_Overrides(t *testing.T) {
	_ = os.Unsetenv("COGITO_PORT")
	_ = os.Unsetenv("COGITO_OLLAMA_MODEL")

	path := writeConfigFile(t, `
server:
  port: 9999
llm:
  ollama_model: mistral:7b
retrieval:
  min_similarity: 0.4
`)

	cfg, err := config.LoadConfigFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "mistral:7b", cfg.LLM.OllamaModel)
	assert.InDelta(t, 0.4, cfg.Retrieval.MinSimilarity, 1e-9)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "sqlite", cfg.Storage.StorageEngine)
}

// TestLoadConfigFromFile_EnvWinsOverFile verifies precedence:
// defaults < file < environment.
func TestLoadConfigFromFile_EnvWinsOverFile(t *testing.T) {
	t.Setenv("COGITO_PORT", "4242")

	path := writeConfigFile(t, `
server:
  port: 9999
`)

	cfg, err := config.LoadConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4242, cfg.Server.Port,
		"Environment variables must take precedence over the config file")
}

func TestLoadConfigFromFile_MissingFile(t *testing.T) {
	_, err := config.LoadConfigFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigFromFile_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "server: [not a map")
	_, err := config.LoadConfigFromFile(path)
	assert.Error(t, err)
}

// writeConfigFile writes YAML content to a temp file and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cogito.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

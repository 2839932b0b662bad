package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/studymate/internal/core/domain"
)

// Environment variables read by ApplyEnv.
const (
	EnvProvider       = "STUDYMATE_EMBEDDING_PROVIDER"
	EnvModel          = "STUDYMATE_EMBEDDING_MODEL"
	EnvBaseURL        = "STUDYMATE_EMBEDDING_BASE_URL"
	EnvAPIKey         = "STUDYMATE_EMBEDDING_API_KEY"
	EnvDimensions     = "STUDYMATE_EMBEDDING_DIMENSIONS"
	EnvTimeout        = "STUDYMATE_EMBEDDING_TIMEOUT"
	EnvChunkSize      = "STUDYMATE_CHUNK_SIZE"
	EnvChunkOverlap   = "STUDYMATE_CHUNK_OVERLAP"
	EnvStoreBackend   = "STUDYMATE_STORE_BACKEND"
	EnvDataDir        = "STUDYMATE_DATA_DIR"
	EnvDuplicates     = "STUDYMATE_DUPLICATES"
	EnvOpenAIAPIKey   = "OPENAI_API_KEY"
	EnvGeminiAPIKey   = "GEMINI_API_KEY"
	EnvOllamaHost     = "OLLAMA_HOST"
	defaultDotEnvFile = ".env"
)

// LookupFunc reads one environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set.
// With no arguments it reads ./.env. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{defaultDotEnvFile}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings with any STUDYMATE_* variables that are set.
// Provider API keys fall back to OPENAI_API_KEY or GEMINI_API_KEY, and the
// Ollama endpoint to OLLAMA_HOST, when the configuration leaves them empty.
// Malformed numbers or durations fail with ErrConfiguration.
func ApplyEnv(settings *domain.AppSettings, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", domain.ErrConfiguration, key, v)
		}
		*dst = n
		return nil
	}

	emb := &settings.Embedding
	if v, ok := lookup(EnvProvider); ok && v != "" {
		emb.Provider = domain.AIProvider(v)
	}
	str(EnvModel, &emb.Model)
	str(EnvBaseURL, &emb.BaseURL)
	str(EnvAPIKey, &emb.APIKey)
	if err := integer(EnvDimensions, &emb.Dimensions); err != nil {
		return err
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a duration", domain.ErrConfiguration, EnvTimeout, v)
		}
		emb.Timeout = d
	}

	if err := integer(EnvChunkSize, &settings.Chunk.Size); err != nil {
		return err
	}
	if err := integer(EnvChunkOverlap, &settings.Chunk.Overlap); err != nil {
		return err
	}

	if v, ok := lookup(EnvStoreBackend); ok && v != "" {
		settings.Store.Backend = domain.StoreBackend(v)
	}
	str(EnvDataDir, &settings.Store.Dir)
	if v, ok := lookup(EnvDuplicates); ok && v != "" {
		settings.Ingest.Duplicates = domain.DuplicatePolicy(v)
	}

	if emb.APIKey == "" {
		switch emb.Provider {
		case domain.AIProviderOpenAI:
			str(EnvOpenAIAPIKey, &emb.APIKey)
		case domain.AIProviderGemini:
			str(EnvGeminiAPIKey, &emb.APIKey)
		}
	}
	if emb.BaseURL == "" && emb.Provider == domain.AIProviderOllama {
		str(EnvOllamaHost, &emb.BaseURL)
	}

	return nil
}

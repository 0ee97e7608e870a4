package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel  slog.Level
	LogFormat string

	EmbeddingBaseURL   string
	EmbeddingModelName string
	EmbeddingAPIKey    string
	TokenizerEncoding  string
	DBPath             string
	QdrantURL          string
	QdrantCollection   string
	QdrantVectorSize   int

	// Chunking parameters. Changing these invalidates the index version.
	ChunkTargetTokens     int
	ChunkHardMaxTokens    int
	ChunkMinSectionTokens int
	ChunkOverlapTokens    int

	// SearchAlpha is the default hybrid blend weight in [0,1].
	SearchAlpha float64
	// SearchLimit is the default result count.
	SearchLimit int
	// IndexerConcurrency is the worker pool size for bulk indexing.
	IndexerConcurrency int
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up to find a project-root .env (next to go.mod), limited depth
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", "dummy-key"),
		TokenizerEncoding:  getEnv("TOKENIZER_ENCODING", "cl100k_base"),
		DBPath:             getEnv("DB_PATH", "./data/medlit.db"),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "abstracts"),
	}

	switch strings.ToLower(getEnv("LOG_LEVEL", "info")) {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "info":
		cfg.LogLevel = slog.LevelInfo
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	// Must match the output vector size of the embeddings model. If the
	// vector size changes, the Qdrant collection must be recreated.
	vectorSize, err := intEnv("QDRANT_VECTOR_SIZE", 0)
	if err != nil {
		return nil, err
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE is required and must be greater than 0")
	}
	cfg.QdrantVectorSize = vectorSize

	if cfg.ChunkTargetTokens, err = intEnv("CHUNK_TARGET_TOKENS", 300); err != nil {
		return nil, err
	}
	if cfg.ChunkHardMaxTokens, err = intEnv("CHUNK_HARD_MAX_TOKENS", 450); err != nil {
		return nil, err
	}
	if cfg.ChunkMinSectionTokens, err = intEnv("CHUNK_MIN_SECTION_TOKENS", 120); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlapTokens, err = intEnv("CHUNK_OVERLAP_TOKENS", 50); err != nil {
		return nil, err
	}
	if cfg.ChunkTargetTokens <= 0 || cfg.ChunkHardMaxTokens < cfg.ChunkTargetTokens {
		return nil, fmt.Errorf("chunk token bounds are invalid: target=%d hard_max=%d",
			cfg.ChunkTargetTokens, cfg.ChunkHardMaxTokens)
	}

	if cfg.SearchLimit, err = intEnv("SEARCH_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.IndexerConcurrency, err = intEnv("INDEXER_CONCURRENCY", 4); err != nil {
		return nil, err
	}

	alphaStr := getEnv("SEARCH_ALPHA", "0.5")
	alpha, err := strconv.ParseFloat(alphaStr, 64)
	if err != nil {
		return nil, fmt.Errorf("SEARCH_ALPHA must be a valid number: %w", err)
	}
	if alpha < 0 || alpha > 1 {
		return nil, fmt.Errorf("SEARCH_ALPHA must be in [0,1], got %v", alpha)
	}
	cfg.SearchAlpha = alpha

	// Create the data directory if it doesn't exist
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// intEnv parses an integer environment variable with a default.
func intEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

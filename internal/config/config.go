package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	LLM       LLMConfig
	Embedding EmbeddingConfig
	Ingest    IngestConfig
	Retrieval RetrievalConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type LLMConfig struct {
	OpenAIKey        string
	AnthropicKey     string
	OllamaURL        string
	DefaultProvider  string
	ChatModel        string
	FallbackProvider string
	MaxRetries       int
}

type EmbeddingConfig struct {
	Provider   string
	Model      string
	Dimensions int
}

type IngestConfig struct {
	SpoolDir       string
	MaxUploadBytes int64
	EmbedWorkers   int
}

// BlankQuestionPolicy controls what Answer does with a whitespace-only
// question: "reject" returns a typed error, "noinfo" short-circuits to the
// no-information answer without touching the embedding provider.
type RetrievalConfig struct {
	TopK                int
	BlankQuestionPolicy string
	AnswerCacheTTL      time.Duration
}

const (
	BlankQuestionReject = "reject"
	BlankQuestionNoInfo = "noinfo"
)

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxRetries, err := getEnvInt("LLM_MAX_RETRIES", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_RETRIES: %w", err)
	}

	dims, err := getEnvInt("EMBEDDING_DIMENSIONS", 768)
	if err != nil {
		return nil, fmt.Errorf("invalid EMBEDDING_DIMENSIONS: %w", err)
	}

	topK, err := getEnvInt("RETRIEVAL_TOP_K", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid RETRIEVAL_TOP_K: %w", err)
	}

	embedWorkers, err := getEnvInt("INGEST_EMBED_WORKERS", 4)
	if err != nil {
		return nil, fmt.Errorf("invalid INGEST_EMBED_WORKERS: %w", err)
	}

	maxUpload, err := getEnvInt("INGEST_MAX_UPLOAD_MB", 32)
	if err != nil {
		return nil, fmt.Errorf("invalid INGEST_MAX_UPLOAD_MB: %w", err)
	}

	cacheTTL, err := getEnvInt("ANSWER_CACHE_TTL_SECONDS", 300)
	if err != nil {
		return nil, fmt.Errorf("invalid ANSWER_CACHE_TTL_SECONDS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		LLM: LLMConfig{
			OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
			AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
			OllamaURL:        getEnv("OLLAMA_URL", "http://localhost:11434"),
			DefaultProvider:  getEnv("LLM_DEFAULT_PROVIDER", "openai"),
			ChatModel:        getEnv("LLM_CHAT_MODEL", "gpt-4o-mini"),
			FallbackProvider: getEnv("LLM_FALLBACK_PROVIDER", ""),
			MaxRetries:       maxRetries,
		},
		Embedding: EmbeddingConfig{
			Provider:   getEnv("EMBEDDING_PROVIDER", "openai"),
			Model:      getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			Dimensions: dims,
		},
		Ingest: IngestConfig{
			SpoolDir:       getEnv("INGEST_SPOOL_DIR", os.TempDir()),
			MaxUploadBytes: int64(maxUpload) << 20,
			EmbedWorkers:   embedWorkers,
		},
		Retrieval: RetrievalConfig{
			TopK:                topK,
			BlankQuestionPolicy: getEnv("BLANK_QUESTION_POLICY", BlankQuestionNoInfo),
			AnswerCacheTTL:      time.Duration(cacheTTL) * time.Second,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must be positive, got %d", c.Embedding.Dimensions)
	}
	switch c.Retrieval.BlankQuestionPolicy {
	case BlankQuestionReject, BlankQuestionNoInfo:
	default:
		return fmt.Errorf("unknown BLANK_QUESTION_POLICY %q", c.Retrieval.BlankQuestionPolicy)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Ai        AIConfig
	Retrieval RetrievalConfig
	Topics    TopicConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type CacheConfig struct {
	QueryPrefix     string
	QueryTTLSeconds int // 0 = entries never expire
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	EmbeddingModel    string
	OllamaBaseURL     string
	LLMProvider       string // "ollama" or "gemini"
	LLMModel          string
	GeminiAPIKey      string
	SafePrompt        bool
}

type RetrievalConfig struct {
	ChunkSize            int // characters per chunk
	ChunkOverlap         int // characters shared between consecutive chunks
	TopK                 int
	MaxDocumentSummaries int
}

type TopicConfig struct {
	IndexDocument string
	Query         string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Cache: CacheConfig{
			QueryPrefix:     getEnv("REDIS_QUERY_CACHE_PREFIX", "ddlh"),
			QueryTTLSeconds: getEnvAsInt("QUERY_CACHE_TTL_SECONDS", 0),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-004"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:          getEnv("LLM_MODEL", "gemini-1.5-flash"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			SafePrompt:        getEnv("DISABLE_SAFE_PROMPT", "") != "1",
		},
		Retrieval: RetrievalConfig{
			// ~350 tokens per chunk with ~50 tokens of overlap,
			// measured in characters (4 chars/token heuristic).
			ChunkSize:            getEnvAsInt("EMBEDDING_CHUNK_SIZE", 1400),
			ChunkOverlap:         getEnvAsInt("EMBEDDING_CHUNK_OVERLAP", 200),
			TopK:                 getEnvAsInt("RETRIEVAL_TOP_K", 10),
			MaxDocumentSummaries: getEnvAsInt("RETRIEVAL_MAX_DOCUMENT_SUMMARIES", 3),
		},
		Topics: TopicConfig{
			IndexDocument: getEnv("INDEX_DOCUMENT_TOPIC_NAME", "INDEX_DOCUMENT"),
			Query:         getEnv("QUERY_TOPIC_NAME", "RUN_QUERY"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

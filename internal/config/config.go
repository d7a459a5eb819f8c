package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string

	// Google Gemini API
	GeminiAPIKey   string
	LLMModel       string
	LLMTemperature float64
	LLMMaxTokens   int

	// Embeddings
	EmbeddingsModel    string
	EmbeddingDimension int

	// Qdrant Configuration
	QdrantHost   string
	QdrantPort   int
	QdrantAPIKey string
	QdrantUseTLS bool

	// Redis Configuration (sessions, answer cache, task queue)
	RedisURL       string
	RedisPassword  string
	RedisDB        int
	SessionTTL     int // seconds
	AnswerCacheTTL int // seconds

	// Model Sidecar Configuration (sparse encoder + reranker)
	SparseEncoderURL string
	RerankerURL      string
	RerankerModel    string
	SidecarTimeout   int // seconds

	// Retrieval
	HybridPrefetchLimit int
	RerankTopK          int

	// Chunking
	MaxChunkTokens int
	CharsPerToken  float64
	MinPreambleLen int

	// Ingestion
	MaxFileSize    int64
	AllowedTypes   []string
	FileStorageDir string

	// Rate Limiting
	RateLimitReqs   int
	RateLimitWindow int
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature: getEnvFloat64("LLM_TEMPERATURE", 0.3),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 2048),

		EmbeddingsModel:    getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),
		EmbeddingDimension: getEnvInt("EMBEDDING_DIMENSION", 768),

		// Qdrant Configuration
		QdrantHost:   getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:   getEnvInt("QDRANT_PORT", 6334),
		QdrantAPIKey: getEnv("QDRANT_API_KEY", ""),
		QdrantUseTLS: getEnvBool("QDRANT_USE_TLS", false),

		// Redis Configuration
		RedisURL:       getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		SessionTTL:     getEnvInt("SESSION_TTL", 86400),
		AnswerCacheTTL: getEnvInt("ANSWER_CACHE_TTL", 3600),

		// Model Sidecar Configuration
		SparseEncoderURL: getEnv("SPARSE_ENCODER_URL", "http://localhost:8001"),
		RerankerURL:      getEnv("RERANKER_URL", "http://localhost:8002"),
		RerankerModel:    getEnv("RERANKER_MODEL", "Qwen/Qwen3-Reranker-0.6B"),
		SidecarTimeout:   getEnvInt("SIDECAR_TIMEOUT", 60),

		HybridPrefetchLimit: getEnvInt("HYBRID_PREFETCH_LIMIT", 25),
		RerankTopK:          getEnvInt("RERANK_TOP_K", 5),

		MaxChunkTokens: getEnvInt("MAX_CHUNK_TOKENS", 1000),
		CharsPerToken:  getEnvFloat64("CHARS_PER_TOKEN", 1.5),
		MinPreambleLen: getEnvInt("MIN_PREAMBLE_LEN", 100),

		MaxFileSize:    getEnvInt64("MAX_FILE_SIZE", 104857600), // 100MB
		AllowedTypes:   strings.Split(getEnv("ALLOWED_FILE_TYPES", "application/pdf"), ","),
		FileStorageDir: getEnv("FILE_STORAGE_DIR", "./storage"),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),
	}

	// Validate required fields
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	if cfg.CharsPerToken <= 0 {
		return nil, fmt.Errorf("CHARS_PER_TOKEN must be a positive number")
	}

	if cfg.MaxChunkTokens <= 0 {
		return nil, fmt.Errorf("MAX_CHUNK_TOKENS must be a positive number")
	}

	if cfg.EmbeddingDimension <= 0 {
		return nil, fmt.Errorf("EMBEDDING_DIMENSION must be a positive number")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

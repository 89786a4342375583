package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Pinecone
	PineconeAPIKey     string
	PineconeIndexName  string
	PineconeControlURL string
	EmbeddingModel     string
	EmbeddingDimension int

	// Groq
	GroqAPIKey string
	GroqAPIURL string
	ChatModel  string

	// Data / retrieval
	DataDir        string
	TopK           int
	IndexBatchSize int
	BatchDelay     time.Duration

	// Server
	Port        string
	GinMode     string
	CORSOrigins []string

	// Optional Redis-backed rate limiting
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RateLimitReqs   int
	RateLimitWindow int
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		PineconeAPIKey:     getEnv("PINECONE_API_KEY", ""),
		PineconeIndexName:  getEnv("PINECONE_INDEX_NAME", "greyfang"),
		PineconeControlURL: getEnv("PINECONE_CONTROL_URL", "https://api.pinecone.io"),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", "llama-text-embed-v2"),
		EmbeddingDimension: getEnvInt("EMBEDDING_DIMENSION", 1024),
		GroqAPIKey:         getEnv("GROQ_API_KEY", ""),
		GroqAPIURL:         getEnv("GROQ_API_URL", "https://api.groq.com/openai/v1"),
		ChatModel:          getEnv("CHAT_MODEL", "openai/gpt-oss-20b"),
		DataDir:            getEnv("DATA_DIR", "./data"),
		TopK:               getEnvInt("RETRIEVAL_TOP_K", 4),
		IndexBatchSize:     getEnvInt("INDEX_BATCH_SIZE", 5),
		BatchDelay:         time.Duration(getEnvInt("INDEX_BATCH_DELAY_SECONDS", 2)) * time.Second,
		Port:               getEnv("PORT", "8000"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		CORSOrigins:        strings.Split(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000"), ","),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		RateLimitReqs:      getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:    getEnvInt("RATE_LIMIT_WINDOW", 60),
	}

	if cfg.EmbeddingDimension <= 0 {
		return nil, fmt.Errorf("EMBEDDING_DIMENSION must be positive, got %d", cfg.EmbeddingDimension)
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

package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Ai        AIConfig
	Assistant AssistantConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	WebSocketLogPath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	AdminToken         string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider    string // "ollama" or "huggingface"
	LLMModel       string // e.g. "llama3", "qwen2.5"
	OllamaBaseURL  string
	HuggingFaceKey string
	HuggingFaceURL string
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string // host:port of the OTLP/HTTP collector
	Insecure    bool
	SampleRatio float64
	Environment string
}

type AssistantConfig struct {
	CanonDictionaryPath string
	CanonWatch          bool
	SessionBackend      string // "memory" or "redis"
	SessionTTL          time.Duration
	SessionMirror       bool
	CatalogBackend      string // "memory" or "postgres"
	CatalogSeedPath     string
	CatalogTimeout      time.Duration
	RewriteEnabled      bool
	RewriteTone         string
	RewriteTimeout      time.Duration
	TurnTopic           string
	TurnEventType       string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	env := getEnv("GO_ENV", "development")

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        env,
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			WebSocketLogPath:   getEnv("WEBSOCKET_LOG_PATH", "logs/websocket.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			AdminToken:         getEnv("ADMIN_TOKEN", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:    getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:       getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			HuggingFaceKey: getEnv("HUGGINGFACE_API_KEY", ""),
			HuggingFaceURL: getEnv("HUGGINGFACE_BASE_URL", ""),
		},
		Assistant: AssistantConfig{
			CanonDictionaryPath: getEnv("CANON_DICTIONARY_PATH", ""),
			CanonWatch:          getEnvAsBool("CANON_WATCH", false),
			SessionBackend:      getEnv("SESSION_BACKEND", "memory"),
			SessionTTL:          getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			SessionMirror:       getEnvAsBool("SESSION_MIRROR", false),
			CatalogBackend:      getEnv("CATALOG_BACKEND", "memory"),
			CatalogSeedPath:     getEnv("CATALOG_SEED_PATH", "data/catalog.json"),
			CatalogTimeout:      getEnvAsDuration("CATALOG_TIMEOUT", 2*time.Second),
			RewriteEnabled:      getEnvAsBool("REWRITE_ENABLED", false),
			RewriteTone:         getEnv("REWRITE_TONE", "amigavel"),
			RewriteTimeout:      getEnvAsDuration("REWRITE_TIMEOUT", 3*time.Second),
			TurnTopic:           getEnv("ASSISTANT_TURN_TOPIC", "ASSISTANT_TURN"),
			TurnEventType:       getEnv("ASSISTANT_TURN_EVENT", "assistant.turn"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			Insecure:    getEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			SampleRatio: getEnvAsFloat("OTEL_SAMPLE_RATIO", 1),
			Environment: env,
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("2s", "500ms") or plain milliseconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if ms := getEnvAsInt(key, -1); ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

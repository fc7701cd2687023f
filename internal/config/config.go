package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	Gemini GeminiConfig
	Ingest IngestConfig
	Live   LiveConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	LiveLogFilePath    string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JWTSecret          string
	UploadTopic        string
	OtelEnabled        bool
	OtelEndpoint       string
	CredentialTTL      time.Duration
	JobTTL             time.Duration
}

type GeminiConfig struct {
	APIKey          string
	BaseURL         string
	UploadURL       string
	LiveURL         string
	QueryModel      string
	SpeechModel     string
	LiveModel       string
	TranscribeModel string
	Voice           string
	Language        string
}

type IngestConfig struct {
	PollInterval   time.Duration
	MaxAttempts    int
	StoreWeight    int
	MaxBytes       int64
	RequireVersion bool
}

type LiveConfig struct {
	InputSampleRate   int
	OutputSampleRate  int
	SystemInstruction string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			LiveLogFilePath:    getEnv("LIVE_LOG_FILE_PATH", "live.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", ""),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			UploadTopic:        getEnv("UPLOAD_EVENTS_TOPIC", "DOCSTORE_UPLOADS"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			CredentialTTL:      getEnvAsDuration("CREDENTIAL_TTL", 12*time.Hour),
			JobTTL:             getEnvAsDuration("UPLOAD_JOB_TTL", time.Hour),
		},
		Gemini: GeminiConfig{
			APIKey:          getEnv("GOOGLE_GEMINI_API_KEY", ""),
			BaseURL:         getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			UploadURL:       getEnv("GEMINI_UPLOAD_URL", "https://generativelanguage.googleapis.com/upload/v1beta"),
			LiveURL:         getEnv("GEMINI_LIVE_URL", ""),
			QueryModel:      getEnv("GEMINI_QUERY_MODEL", "gemini-2.5-flash"),
			SpeechModel:     getEnv("GEMINI_TTS_MODEL", "gemini-2.5-flash-preview-tts"),
			LiveModel:       getEnv("GEMINI_LIVE_MODEL", ""),
			TranscribeModel: getEnv("GEMINI_TRANSCRIBE_MODEL", "gemini-2.5-flash"),
			Voice:           getEnv("GEMINI_VOICE", "Kore"),
			Language:        getEnv("ASSISTANT_LANGUAGE", "English"),
		},
		Ingest: IngestConfig{
			PollInterval:   getEnvAsDuration("INGEST_POLL_INTERVAL", 3*time.Second),
			MaxAttempts:    getEnvAsInt("INGEST_MAX_ATTEMPTS", 20),
			StoreWeight:    getEnvAsInt("INGEST_STORE_WEIGHT", 5),
			MaxBytes:       int64(getEnvAsInt("INGEST_MAX_BYTES", 100<<20)),
			RequireVersion: getEnvAsBool("INGEST_REQUIRE_VERSION", true),
		},
		Live: LiveConfig{
			InputSampleRate:   getEnvAsInt("LIVE_INPUT_SAMPLE_RATE", 16000),
			OutputSampleRate:  getEnvAsInt("LIVE_OUTPUT_SAMPLE_RATE", 24000),
			SystemInstruction: getEnv("LIVE_SYSTEM_INSTRUCTION", "You are a helpful assistant for the user's document store. Keep answers short."),
		},
	}
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, "production")
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

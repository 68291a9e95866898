package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	Keys    APIKeys
	Ai      AIConfig
	Planner PlannerConfig
	Catalog CatalogConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	AuditLogPath       string
	CorsAllowedOrigins string
	NatsURL            string
	NatsEnabled        bool
	RedisURL           string
	DatabaseURL        string
	JwtSecret          string
	SessionTokenTTL    time.Duration
	EventTopic         string
	RateLimitPerMinute int
}

type APIKeys struct {
	GoogleGemini string
	HuggingFace  string
}

type AIConfig struct {
	LLMProvider        string // "ollama", "huggingface", "gemini"
	LLMModel           string // e.g. "llama3", "gemini-1.5-flash"
	OllamaBaseURL      string
	HuggingFaceBaseURL string
	RequestsPerSecond  float64
	OracleTimeout      time.Duration
}

type PlannerConfig struct {
	MaxTurns          int
	MaxStepsPerTurn   int
	HistoryWindow     int
	OutputDir         string
	PresenterMode     string // "markdown" or "llm"
	CheckpointBackend string // "memory", "redis" or "postgres"
	CheckpointTTL     time.Duration
}

type CatalogConfig struct {
	Source             string // "embedded", "file", "http"
	FilePath           string
	OutboundFlightsURL string
	ReturnFlightsURL   string
	HotelsURL          string
	ActivitiesURL      string
	DestinationInfoURL string
	HTTPTimeout        time.Duration
	CacheTTL           time.Duration
}

var v = viper.New()

// Load reads .env, an optional YAML file named by CONFIG_FILE and the process
// environment. Environment variables win over the file.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	v = viper.New()
	v.AutomaticEnv()
	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			log.Printf("Warn: could not read config file %s: %v", file, err)
		}
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/planner.log"),
			AuditLogPath:       getEnv("AUDIT_LOG_PATH", "logs/trip_events.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			NatsEnabled:        getEnvAsBool("NATS_ENABLED", false),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", "change-me"),
			SessionTokenTTL:    getEnvAsDuration("SESSION_TOKEN_TTL", 24*time.Hour),
			EventTopic:         getEnv("TRIP_EVENT_TOPIC", "trip_events"),
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:        getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:           getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			HuggingFaceBaseURL: getEnv("HUGGINGFACE_BASE_URL", ""),
			RequestsPerSecond:  getEnvAsFloat("LLM_REQUESTS_PER_SECOND", 0),
			OracleTimeout:      getEnvAsDuration("ORACLE_TIMEOUT", 60*time.Second),
		},
		Planner: PlannerConfig{
			MaxTurns:          getEnvAsInt("PLANNER_MAX_TURNS", 20),
			MaxStepsPerTurn:   getEnvAsInt("PLANNER_MAX_STEPS_PER_TURN", 30),
			HistoryWindow:     getEnvAsInt("PLANNER_HISTORY_WINDOW", 6),
			OutputDir:         getEnv("PLANNER_OUTPUT_DIR", "outputs"),
			PresenterMode:     getEnv("PLANNER_PRESENTER", "markdown"),
			CheckpointBackend: getEnv("CHECKPOINT_BACKEND", "memory"),
			CheckpointTTL:     getEnvAsDuration("CHECKPOINT_TTL", 24*time.Hour),
		},
		Catalog: CatalogConfig{
			Source:             getEnv("CATALOG_SOURCE", "embedded"),
			FilePath:           getEnv("CATALOG_FILE", ""),
			OutboundFlightsURL: getEnv("CATALOG_OUTBOUND_FLIGHTS_URL", ""),
			ReturnFlightsURL:   getEnv("CATALOG_RETURN_FLIGHTS_URL", ""),
			HotelsURL:          getEnv("CATALOG_HOTELS_URL", ""),
			ActivitiesURL:      getEnv("CATALOG_ACTIVITIES_URL", ""),
			DestinationInfoURL: getEnv("CATALOG_DESTINATION_INFO_URL", ""),
			HTTPTimeout:        getEnvAsDuration("CATALOG_HTTP_TIMEOUT", 10*time.Second),
			CacheTTL:           getEnvAsDuration("CATALOG_CACHE_TTL", 10*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	v.SetDefault(key, fallback)
	return strings.TrimSpace(v.GetString(key))
}

func getEnvAsInt(key string, fallback int) int {
	v.SetDefault(key, fallback)
	return v.GetInt(key)
}

func getEnvAsFloat(key string, fallback float64) float64 {
	v.SetDefault(key, fallback)
	return v.GetFloat64(key)
}

func getEnvAsBool(key string, fallback bool) bool {
	v.SetDefault(key, fallback)
	return v.GetBool(key)
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	v.SetDefault(key, fallback)
	return v.GetDuration(key)
}

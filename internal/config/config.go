package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"

	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"

	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config is populated from defaults, then an optional YAML file named by
// CONFIG_FILE, then environment variables (which win).
type Config struct {
	HTTPPort       string        `yaml:"http_port" env:"HTTP_PORT"`
	LogLevel       string        `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat      string        `yaml:"log_format" env:"LOG_FORMAT"`
	CORSOrigins    []string      `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`

	JWTSecret         string `yaml:"jwt_secret" env:"JWT_SECRET"`
	AdminUsername     string `yaml:"admin_username" env:"ADMIN_USERNAME"`
	AdminPassword     string `yaml:"admin_password" env:"ADMIN_PASSWORD"`
	AdminPasswordHash string `yaml:"admin_password_hash" env:"ADMIN_PASSWORD_HASH"`

	KnowledgeBackend   string `yaml:"knowledge_backend" env:"KNOWLEDGE_BACKEND"`
	KnowledgeBasePath  string `yaml:"knowledge_base_path" env:"KNOWLEDGE_BASE_PATH"`
	DatabaseURL        string `yaml:"database_url" env:"DATABASE_URL"`
	FixedQACategory    string `yaml:"fixed_qa_category" env:"FIXED_QA_CATEGORY"`
	WatchKnowledgeBase bool   `yaml:"watch_knowledge_base" env:"WATCH_KNOWLEDGE_BASE"`
	ReloadSchedule     string `yaml:"reload_schedule" env:"RELOAD_SCHEDULE"`

	SimilarityThreshold float64 `yaml:"similarity_threshold" env:"SIMILARITY_THRESHOLD"`
	TopK                int     `yaml:"top_k" env:"TOP_K"`
	ContextResults      int     `yaml:"context_results" env:"CONTEXT_RESULTS"`

	LLMProvider       string        `yaml:"llm_provider" env:"LLM_PROVIDER"`
	OllamaHost        string        `yaml:"ollama_host" env:"OLLAMA_HOST"`
	ModelName         string        `yaml:"model_name" env:"MODEL_NAME"`
	OpenAIAPIKey      string        `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	OpenAIBaseURL     string        `yaml:"openai_base_url" env:"OPENAI_BASE_URL"`
	GeminiAPIKey      string        `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	LLMTimeout        time.Duration `yaml:"llm_timeout" env:"LLM_TIMEOUT"`
	MaxResponseLength int           `yaml:"max_response_length" env:"MAX_RESPONSE_LENGTH"`

	CacheDriver   string        `yaml:"cache_driver" env:"CACHE_DRIVER"`
	CacheTTL      time.Duration `yaml:"cache_ttl" env:"CACHE_TTL"`
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB"`
}

// Default returns the development defaults.
func Default() *Config {
	return &Config{
		HTTPPort:       "8080",
		LogLevel:       "info",
		LogFormat:      "json",
		CORSOrigins:    []string{"*"},
		RequestTimeout: 60 * time.Second,

		AdminUsername: "admin",
		AdminPassword: "admin123",

		KnowledgeBackend:   BackendJSON,
		KnowledgeBasePath:  "knowledge_base",
		DatabaseURL:        "induction.db",
		FixedQACategory:    "fixed_qa",
		WatchKnowledgeBase: true,

		SimilarityThreshold: 0.7,
		TopK:                3,
		ContextResults:      2,

		LLMProvider:       ProviderOllama,
		OllamaHost:        "http://localhost:11434",
		ModelName:         "tinyllama",
		LLMTimeout:        30 * time.Second,
		MaxResponseLength: 500,

		CacheDriver: CacheMemory,
		CacheTTL:    time.Hour,
		RedisAddr:   "localhost:6379",
	}
}

// Load reads .env (if present), the optional YAML file and the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// normalize lower-cases the selector values so later switches can match
// them exactly.
func (c *Config) normalize() {
	c.KnowledgeBackend = strings.ToLower(strings.TrimSpace(c.KnowledgeBackend))
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	c.CacheDriver = strings.ToLower(strings.TrimSpace(c.CacheDriver))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.HTTPPort == "" {
		errs = append(errs, errors.New("HTTP_PORT is required"))
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		errs = append(errs, fmt.Errorf("similarity threshold must be within (0,1], got %v", c.SimilarityThreshold))
	}
	if c.TopK < 1 {
		errs = append(errs, fmt.Errorf("top_k must be positive, got %d", c.TopK))
	}
	if c.ContextResults < 1 {
		errs = append(errs, fmt.Errorf("context_results must be positive, got %d", c.ContextResults))
	}
	if c.FixedQACategory == "" {
		errs = append(errs, errors.New("fixed_qa_category must not be empty"))
	}
	if c.LLMTimeout <= 0 {
		errs = append(errs, errors.New("llm_timeout must be positive"))
	}

	switch strings.ToLower(c.KnowledgeBackend) {
	case BackendJSON, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("invalid knowledge backend: %s", c.KnowledgeBackend))
	}

	switch strings.ToLower(c.LLMProvider) {
	case ProviderOllama, ProviderOpenAI, ProviderNone:
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for the gemini provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid llm provider: %s", c.LLMProvider))
	}

	switch strings.ToLower(c.CacheDriver) {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		errs = append(errs, fmt.Errorf("invalid cache driver: %s", c.CacheDriver))
	}

	return errors.Join(errs...)
}

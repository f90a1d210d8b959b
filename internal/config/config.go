package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	pkgRetry "github.com/northpole/elf-backend/internal/pkg/retry"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// Base URL used when minting shareable chat and result links
	PublicBaseURL string `env:"PUBLIC_BASE_URL,notEmpty"`

	// Database configuration. Empty DATABASE_URL selects the
	// in-memory session store.
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Idle lifetime of in-memory sessions and results
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// External service configurations
	LLMConnectorCfg  LLMConnectorConfig  `envPrefix:"LLM_"`
	MailConnectorCfg MailConnectorConfig `envPrefix:"MAIL_"`
	TelegramCfg      TelegramConfig      `envPrefix:"TELEGRAM_"`

	// Notification channel: "none", "mail" or "telegram"
	NotifyChannel string `env:"NOTIFY_CHANNEL" envDefault:"none"`

	// Pipeline tuning
	PipelineCfg PipelineConfig `envPrefix:"PIPELINE_"`

	// Default interviewer persona ("elf" or "santa")
	Persona string `env:"PERSONA" envDefault:"elf"`

	// Optional JSON file with persona prompt overrides
	PersonaFile string `env:"PERSONA_FILE"`

	// Persona prompt overrides loaded from PersonaFile
	PersonaOverrides map[string]string

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

type LLMConnectorConfig struct {
	HTTPClientConfig
	Model               string `env:"MODEL,notEmpty"`
	CompletionsEndpoint string `env:"COMPLETIONS_ENDPOINT" envDefault:"/chat/completions"`
}

type MailConnectorConfig struct {
	HTTPClientConfig
	SendEndpoint string               `env:"SEND_ENDPOINT" envDefault:"/send"`
	FromAddress  string               `env:"FROM_ADDRESS"`
	Retry        pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// TelegramConfig holds the Telegram notifier configuration
type TelegramConfig struct {
	BotToken string `env:"BOT_TOKEN"`
	ChatID   int64  `env:"CHAT_ID"`
}

// PipelineConfig holds the candidate count and sampling parameters of
// each pipeline stage. None of these is a call-site literal so the
// pipeline can be retuned without touching orchestration code.
type PipelineConfig struct {
	Candidates          int     `env:"CANDIDATES" envDefault:"3"`
	MaxTokens           int     `env:"MAX_TOKENS" envDefault:"1000"`
	GenerateTemperature float64 `env:"GENERATE_TEMPERATURE" envDefault:"0.3"`
	SelectTemperature   float64 `env:"SELECT_TEMPERATURE" envDefault:"0"`
	ValidateTemperature float64 `env:"VALIDATE_TEMPERATURE" envDefault:"0"`
	RefineTemperature   float64 `env:"REFINE_TEMPERATURE" envDefault:"0"`
	SuggestTemperature  float64 `env:"SUGGEST_TEMPERATURE" envDefault:"0.7"`
	SuggestionCount     int     `env:"SUGGESTION_COUNT" envDefault:"5"`
	TopicDepthLimit     int     `env:"TOPIC_DEPTH_LIMIT" envDefault:"3"`
	Trace               bool    `env:"TRACE" envDefault:"false"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT,notEmpty"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT,notEmpty"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE,notEmpty"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT,notEmpty"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT,notEmpty"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL,notEmpty"`
}

// personaOverrides represents the structure of the persona file
type personaOverrides struct {
	Personas map[string]string `json:"personas"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := loadPersonaOverrides(cfg); err != nil {
		return nil, fmt.Errorf("load persona overrides: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.PipelineCfg.Candidates < 1 || cfg.PipelineCfg.Candidates > 10 {
		return fmt.Errorf("PIPELINE_CANDIDATES must be between 1 and 10, got %d", cfg.PipelineCfg.Candidates)
	}

	if cfg.PipelineCfg.SuggestionCount < 1 || cfg.PipelineCfg.SuggestionCount > 10 {
		return fmt.Errorf("PIPELINE_SUGGESTION_COUNT must be between 1 and 10, got %d", cfg.PipelineCfg.SuggestionCount)
	}

	if cfg.PipelineCfg.TopicDepthLimit < 1 {
		return fmt.Errorf("PIPELINE_TOPIC_DEPTH_LIMIT must be at least 1, got %d", cfg.PipelineCfg.TopicDepthLimit)
	}

	switch cfg.NotifyChannel {
	case "none", "mail", "telegram":
	default:
		return fmt.Errorf("NOTIFY_CHANNEL must be one of none, mail, telegram, got %q", cfg.NotifyChannel)
	}

	if cfg.NotifyChannel == "telegram" && (cfg.TelegramCfg.BotToken == "" || cfg.TelegramCfg.ChatID == 0) {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required when NOTIFY_CHANNEL=telegram")
	}

	switch cfg.Persona {
	case "elf", "santa":
	default:
		return fmt.Errorf("PERSONA must be elf or santa, got %q", cfg.Persona)
	}

	return nil
}

// loadPersonaOverrides loads custom persona prompts from the optional
// JSON file. A missing file means built-in prompts are used.
func loadPersonaOverrides(cfg *Config) error {
	if cfg.PersonaFile == "" {
		return nil
	}

	if _, err := os.Stat(cfg.PersonaFile); os.IsNotExist(err) {
		fmt.Printf("Warning: persona file not found at %s, using built-in prompts\n", cfg.PersonaFile)
		return nil
	}

	data, err := os.ReadFile(cfg.PersonaFile)
	if err != nil {
		return fmt.Errorf("read persona file: %w", err)
	}

	var overrides personaOverrides
	if err := json.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse persona JSON: %w", err)
	}

	if len(overrides.Personas) == 0 {
		return fmt.Errorf("persona file contains no personas: %s", cfg.PersonaFile)
	}

	cfg.PersonaOverrides = overrides.Personas

	fmt.Printf("Loaded %d persona overrides from %s\n", len(overrides.Personas), cfg.PersonaFile)
	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}

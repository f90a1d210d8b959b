package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/northpole/elf-backend/internal/api"
	chatapi "github.com/northpole/elf-backend/internal/api/chat"
	"github.com/northpole/elf-backend/internal/config"
	"github.com/northpole/elf-backend/internal/integration/llm"
	"github.com/northpole/elf-backend/internal/integration/notify"
	"github.com/northpole/elf-backend/internal/pkg/formatter"
	"github.com/northpole/elf-backend/internal/pkg/observe"
	"github.com/northpole/elf-backend/internal/pkg/prompts"
	"github.com/northpole/elf-backend/internal/pkg/validator"
	"github.com/northpole/elf-backend/internal/repository"
	"github.com/northpole/elf-backend/internal/usecase/chat"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Initialize repositories. An empty DATABASE_URL selects the
	// in-memory TTL store; anything else selects Postgres.
	var sessionRepo repository.SessionRepository
	var resultRepo repository.ResultRepository
	var db *pgxpool.Pool

	if cfg.DatabaseURL == "" {
		logger.Info("Using in-memory session store", zap.Duration("ttl", cfg.SessionTTL))
		sessionRepo = repository.NewSessionMemory(cfg.SessionTTL)
		resultRepo = repository.NewResultMemory(cfg.SessionTTL)
	} else {
		db, err = setupDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("setup database: %w", err)
		}

		logger.Info("Running database migrations")
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("Database migrations completed successfully")

		sessionRepo = repository.NewSessionPostgres(db)
		resultRepo = repository.NewResultPostgres(db)
	}
	logger.Info("Repositories initialized")

	// Initialize the model connector (with mock support)
	var llmConnector chat.LLMConnector
	if cfg.EnableMocks {
		logger.Info("Using mock connector for the model provider")
		llmConnector = llm.NewMockConnector(logger)
	} else {
		logger.Info("Using real connector for the model provider")
		llmConnector = llm.NewConnector(cfg.LLMConnectorCfg, logger)
	}

	// Initialize the notification channel
	notifier, err := setupNotifier(cfg, logger)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("setup notifier: %w", err)
	}

	// Pipeline stage observer
	var observer observe.Observer
	if cfg.PipelineCfg.Trace {
		observer = observe.NewZapObserver()
	} else {
		observer = observe.NewNopObserver()
	}

	// Build persona configurations with pipeline tuning applied
	personas := buildPersonas(cfg)
	logger.Info("Personas initialized",
		zap.Int("count", len(personas)),
		zap.String("default", cfg.Persona),
	)

	// Initialize use cases
	chatUC := chat.NewUsecase(
		sessionRepo,
		resultRepo,
		llmConnector,
		notifier,
		observer,
		personas,
		cfg.Persona,
		cfg.PublicBaseURL,
		logger,
	)
	logger.Info("Use cases initialized")

	// Setup API handlers
	chatHandler := chatapi.NewHandler(
		chatUC,
		validator.NewValidator(),
		formatter.NewFactory(),
		cfg.PublicBaseURL,
	)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(chatHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		logger: logger,
	}, nil
}

// setupNotifier wires the configured completion notification channel.
func setupNotifier(cfg *config.Config, logger *zap.Logger) (chat.Notifier, error) {
	switch cfg.NotifyChannel {
	case "mail":
		logger.Info("Using mail notification channel")
		return notify.NewMailConnector(cfg.MailConnectorCfg, logger), nil
	case "telegram":
		logger.Info("Using telegram notification channel")
		return notify.NewTelegramNotifier(cfg.TelegramCfg, logger)
	default:
		logger.Info("Completion notifications disabled")
		return notify.NewNopNotifier(), nil
	}
}

// buildPersonas creates the persona registry and applies the pipeline
// tuning from config to each entry.
func buildPersonas(cfg *config.Config) map[string]prompts.Configuration {
	personas := make(map[string]prompts.Configuration, 2)
	for _, name := range []string{"elf", "santa"} {
		p := prompts.ByName(name, cfg.PersonaOverrides)
		applyPipelineConfig(&p, cfg.PipelineCfg)
		personas[name] = p
	}
	return personas
}

func applyPipelineConfig(p *prompts.Configuration, cfg config.PipelineConfig) {
	p.Candidates = cfg.Candidates
	p.SuggestionCount = cfg.SuggestionCount
	p.TopicDepthLimit = cfg.TopicDepthLimit
	p.Generate = prompts.StageSampling{Temperature: cfg.GenerateTemperature, MaxTokens: cfg.MaxTokens}
	p.Select = prompts.StageSampling{Temperature: cfg.SelectTemperature, MaxTokens: cfg.MaxTokens}
	p.Validate = prompts.StageSampling{Temperature: cfg.ValidateTemperature, MaxTokens: cfg.MaxTokens}
	p.Refine = prompts.StageSampling{Temperature: cfg.RefineTemperature, MaxTokens: cfg.MaxTokens}
	p.Suggest = prompts.StageSampling{Temperature: cfg.SuggestTemperature, MaxTokens: cfg.MaxTokens}
}

// setupLogger builds the application logger at the configured level.
func setupLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	zapCfg.EncoderConfig.TimeKey = "ts"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build()
}

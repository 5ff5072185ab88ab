package builder

import (
	"context"
	"fmt"
	"net/http"

	"github.com/futig/survey-assistant/internal/api"
	sessionapi "github.com/futig/survey-assistant/internal/api/session"
	"github.com/futig/survey-assistant/internal/config"
	"github.com/futig/survey-assistant/internal/integration/callback"
	"github.com/futig/survey-assistant/internal/integration/llm"
	"github.com/futig/survey-assistant/internal/nlu"
	"github.com/futig/survey-assistant/internal/pkg/formatter"
	"github.com/futig/survey-assistant/internal/pkg/validator"
	"github.com/futig/survey-assistant/internal/questionnaire"
	"github.com/futig/survey-assistant/internal/repository"
	"github.com/futig/survey-assistant/internal/survey"
	"github.com/futig/survey-assistant/internal/telegram"
	"github.com/futig/survey-assistant/internal/telegram/state"
	"github.com/futig/survey-assistant/internal/usecase/session"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// resources are the connections opened while building; close releases them
type resources struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func (r *resources) close() {
	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
}

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

	sessionUC, res, err := buildSessionUsecase(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	sessionHandler := sessionapi.NewHandler(sessionUC)
	wsHandler := sessionapi.NewWSHandler(sessionUC, cfg.WSAllowedOrigins)
	logger.Info("API handlers initialized")

	router := api.SetupRouter(sessionHandler, wsHandler, cfg.RequestTimeout, logger)
	logger.Info("HTTP router configured")

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server:          server,
		resources:       res,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}, nil
}

// BuildTelegramBot creates the Telegram front end over its own session usecase
func BuildTelegramBot() (*BotApp, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.TelegramCfg.BotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
	)

	sessionUC, res, err := buildSessionUsecase(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var storage state.Storage
	if res.db != nil {
		storage = repository.NewTelegramStatePostgres(res.db)
		logger.Info("Telegram chat state kept in postgres")
	} else {
		storage = state.NewCacheStorage(cfg.TelegramCfg.SessionTTL, cfg.SessionStoreCfg.CleanupInterval)
		logger.Info("Telegram chat state kept in memory")
	}

	bot, err := telegram.NewBot(&cfg.TelegramCfg, storage, sessionUC, logger)
	if err != nil {
		res.close()
		return nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	logger.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &BotApp{
		bot:       bot,
		resources: res,
		logger:    logger,
	}, nil
}

// buildSessionUsecase wires the questionnaire, NLU, engine and storage shared by both front ends
func buildSessionUsecase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*session.SessionUsecase, *resources, error) {
	res := &resources{}

	catalog, err := loadQuestionnaire(cfg.SurveyCfg.QuestionnairePath)
	if err != nil {
		return nil, nil, fmt.Errorf("load questionnaire: %w", err)
	}
	logger.Info("Questionnaire loaded",
		zap.String("title", catalog.Title()),
		zap.String("version", catalog.Version()),
		zap.Int("questions", catalog.Len()),
	)

	var (
		saver   survey.Saver
		archive session.AnswerArchive
	)
	switch cfg.PersistenceCfg.Backend {
	case config.PersistenceBackendPostgres:
		db, err := setupDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("setup database: %w", err)
		}
		res.db = db

		logger.Info("Running database migrations")
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			res.close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("Database migrations completed successfully")

		responses := repository.NewResponsePostgres(db, catalog.Version())
		saver, archive = responses, responses
	default:
		logger.Info("Using stub answer saver", zap.Duration("delay", cfg.PersistenceCfg.StubDelay))
		saver = repository.NewStubSaver(cfg.PersistenceCfg.StubDelay)
	}

	if cfg.CallbackConnectorCfg.URL != "" {
		saver = callback.NewNotifyingSaver(saver, callback.NewConnector(cfg.CallbackConnectorCfg, logger))
		logger.Info("Completion callback enabled")
	}

	var (
		store  repository.SessionStore
		ucOpts []session.Option
	)
	switch cfg.SessionStoreCfg.Backend {
	case config.SessionBackendRedis:
		client, err := setupRedis(ctx, cfg.SessionStoreCfg, logger)
		if err != nil {
			res.close()
			return nil, nil, fmt.Errorf("setup redis: %w", err)
		}
		res.redis = client
		store = repository.NewSessionRedis(client, cfg.SessionStoreCfg.RedisKeyPrefix, cfg.SessionStoreCfg.TTL)
		ucOpts = append(ucOpts, session.WithTurnLocker(repository.NewSessionLockRedis(
			client,
			cfg.SessionStoreCfg.RedisKeyPrefix,
			cfg.SessionStoreCfg.LockTTL,
			cfg.SessionStoreCfg.LockRetryDelay,
		)))
		logger.Info("Session turns locked in redis", zap.Duration("lock_ttl", cfg.SessionStoreCfg.LockTTL))
	default:
		store = repository.NewSessionCache(cfg.SessionStoreCfg.TTL, cfg.SessionStoreCfg.CleanupInterval)
	}
	logger.Info("Session store initialized", zap.String("backend", cfg.SessionStoreCfg.Backend))

	var completer nlu.Completer
	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		completer = llm.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services")
		completer = llm.NewConnector(cfg.LLMConnectorCfg, logger)
	}

	engine := survey.NewEngine(
		catalog,
		nlu.NewInterpreter(completer),
		nlu.NewComposer(completer),
		saver,
		survey.WithOffTopicGate(cfg.SurveyCfg.OffTopicGate),
	)

	sessionUC := session.NewUsecase(
		engine,
		store,
		archive,
		catalog,
		validator.NewValidator(cfg.SurveyCfg),
		formatter.NewFactory(),
		logger,
		ucOpts...,
	)
	logger.Info("Use cases initialized")

	return sessionUC, res, nil
}

func loadQuestionnaire(path string) (*questionnaire.Store, error) {
	if path == "" {
		return questionnaire.LoadDefault()
	}
	return questionnaire.LoadFile(path)
}

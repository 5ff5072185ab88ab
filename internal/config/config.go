package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/survey-assistant/internal/pkg/retry"
	"github.com/joho/godotenv"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"

	PersistenceBackendPostgres = "postgres"
	PersistenceBackendStub     = "stub"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr         string        `env:"SERVER_ADDR" envDefault:":8080"`
	ServerReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	ServerWriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"120s"`
	ServerIdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`

	// Per-request deadline for REST routes; websocket connections are not bound by it
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT" envDefault:"90s"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	WSAllowedOrigins []string      `env:"WS_ALLOWED_ORIGINS" envSeparator:","`

	// Database configuration, required by the postgres persistence backend
	DatabaseURL         string               `env:"DATABASE_URL"`
	DBMaxConns          int                  `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int                  `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration        `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration        `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration        `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
	DBConnectRetry      pkgRetry.RetryConfig `envPrefix:"DB_CONNECT_RETRY_"`

	// NLU collaborator
	LLMConnectorCfg LLMConnectorConfig `envPrefix:"LLM_"`

	// Completion webhook, disabled when CALLBACK_URL is empty
	CallbackConnectorCfg CallbackConnectorConfig `envPrefix:"CALLBACK_"`

	SessionStoreCfg SessionStoreConfig `envPrefix:"SESSION_STORE_"`
	PersistenceCfg  PersistenceConfig  `envPrefix:"PERSISTENCE_"`
	SurveyCfg       SurveyConfig       `envPrefix:"SURVEY_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration (only read by the bot binary)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string               `env:"BOT_TOKEN"`
	UpdateTimeout      int                  `env:"UPDATE_TIMEOUT" envDefault:"60"`
	RateLimitPerMinute int                  `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	RateLimitBurst     int                  `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int                  `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
	SessionTTL         time.Duration        `env:"SESSION_TTL" envDefault:"24h"`
	Retry              pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type LLMConnectorConfig struct {
	HTTPClientConfig
	CompletionsEndpoint string `env:"COMPLETIONS_ENDPOINT" envDefault:"/chat/completions"`
	Model               string `env:"MODEL" envDefault:"gpt-4"`
}

type CallbackConnectorConfig struct {
	URL     string               `env:"URL"`
	Token   string               `env:"TOKEN"`
	Timeout time.Duration        `env:"TIMEOUT" envDefault:"10s"`
	Retry   pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL" envDefault:"https://api.openai.com/v1"`
}

// SessionStoreConfig selects where in-flight conversations live
type SessionStoreConfig struct {
	Backend         string        `env:"BACKEND" envDefault:"memory"`
	TTL             time.Duration `env:"TTL" envDefault:"24h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
	RedisAddr       string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	RedisKeyPrefix  string        `env:"REDIS_KEY_PREFIX" envDefault:"survey:session:"`

	// Turn locks span replicas sharing one Redis store
	LockTTL        time.Duration `env:"LOCK_TTL" envDefault:"2m"`
	LockRetryDelay time.Duration `env:"LOCK_RETRY_DELAY" envDefault:"50ms"`
}

// PersistenceConfig selects the answer-set saver
type PersistenceConfig struct {
	Backend   string        `env:"BACKEND" envDefault:"stub"`
	StubDelay time.Duration `env:"STUB_DELAY" envDefault:"1s"`
}

type SurveyConfig struct {
	QuestionnairePath string `env:"QUESTIONNAIRE_PATH"`
	OffTopicGate      bool   `env:"OFFTOPIC_GATE" envDefault:"false"`
	MaxMessageLength  int    `env:"MAX_MESSAGE_LENGTH" envDefault:"2000"`
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

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	return cfg, nil
}

// Parse reads and validates the configuration from the process environment
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	// Validate Telegram configuration
	if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
	}

	if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
	}

	if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
	}

	// Validate session store and persistence selection
	switch cfg.SessionStoreCfg.Backend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		errors = append(errors, fmt.Sprintf("SESSION_STORE_BACKEND must be %q or %q, got %q", SessionBackendMemory, SessionBackendRedis, cfg.SessionStoreCfg.Backend))
	}

	if cfg.SessionStoreCfg.TTL <= 0 {
		errors = append(errors, fmt.Sprintf("SESSION_STORE_TTL must be positive, got %s", cfg.SessionStoreCfg.TTL))
	}

	if cfg.SessionStoreCfg.Backend == SessionBackendRedis && cfg.SessionStoreCfg.LockTTL < cfg.RequestTimeout {
		errors = append(errors, fmt.Sprintf("SESSION_STORE_LOCK_TTL must be at least REQUEST_TIMEOUT (%s), got %s", cfg.RequestTimeout, cfg.SessionStoreCfg.LockTTL))
	}

	switch cfg.PersistenceCfg.Backend {
	case PersistenceBackendStub:
	case PersistenceBackendPostgres:
		if cfg.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required when PERSISTENCE_BACKEND=postgres")
		}
	default:
		errors = append(errors, fmt.Sprintf("PERSISTENCE_BACKEND must be %q or %q, got %q", PersistenceBackendPostgres, PersistenceBackendStub, cfg.PersistenceCfg.Backend))
	}

	// Validate Database configuration
	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if !cfg.EnableMocks && cfg.LLMConnectorCfg.Token == "" {
		errors = append(errors, "LLM_TOKEN is required unless ENABLE_MOCKS=true")
	}

	if cfg.SurveyCfg.MaxMessageLength < 1 {
		errors = append(errors, fmt.Sprintf("SURVEY_MAX_MESSAGE_LENGTH must be positive, got %d", cfg.SurveyCfg.MaxMessageLength))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

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

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Ledger Config
	LedgerBackend       string        `env:"LEDGER_BACKEND" envDefault:"postgres"`
	DatabaseURL         string        `env:"DATABASE_URL"`
	SQLitePath          string        `env:"SQLITE_PATH" envDefault:"firechain.db"`
	ConfirmationTimeout time.Duration `env:"CONFIRMATION_TIMEOUT" envDefault:"10s"`
	LedgerQueueSize     int           `env:"LEDGER_QUEUE_SIZE" envDefault:"256"`
	CASRetries          int           `env:"CAS_RETRIES" envDefault:"5"`
	LedgerApplyRetries  int           `env:"LEDGER_APPLY_RETRIES" envDefault:"3"`

	// Redis Config
	RedisAddr string        `env:"REDIS_ADDR"`
	RedisPass string        `env:"REDIS_PASSWORD"`
	RedisDB   int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`

	// Auth Config: API_KEYS - пары key:actor через запятую
	APIKeys   map[string]string `env:"API_KEYS"`
	JWTSecret string            `env:"JWT_SECRET"`
	JWTIssuer string            `env:"JWT_ISSUER"`
	Verifiers []string          `env:"VERIFIERS"`
	Approvers []string          `env:"APPROVERS"`

	// Rewards / Fund Config
	RewardAmount decimal.Decimal `env:"REWARD_AMOUNT" envDefault:"10"`
	FundPoolSeed decimal.Decimal `env:"FUND_POOL_SEED" envDefault:"0"`

	// Projection Config
	ListMaxRange    int `env:"LIST_MAX_RANGE" envDefault:"1000"`
	ListConcurrency int `env:"LIST_CONCURRENCY" envDefault:"8"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LedgerBackend:       strings.ToLower(getEnv("LEDGER_BACKEND", BackendPostgres)),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		SQLitePath:          getEnv("SQLITE_PATH", "firechain.db"),
		ConfirmationTimeout: getEnvAsDuration("CONFIRMATION_TIMEOUT", 10*time.Second),
		LedgerQueueSize:     getEnvAsInt("LEDGER_QUEUE_SIZE", 256),
		CASRetries:          getEnvAsInt("CAS_RETRIES", 5),
		LedgerApplyRetries:  getEnvAsInt("LEDGER_APPLY_RETRIES", 3),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPass:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:             getEnvAsInt("REDIS_DB", 0),
		CacheTTL:            getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		WebhookURL:          os.Getenv("WEBHOOK_URL"),
		WebhookSecret:       os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:      getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries:   getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:    getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		JWTIssuer:           os.Getenv("JWT_ISSUER"),
		Verifiers:           getEnvAsList("VERIFIERS"),
		Approvers:           getEnvAsList("APPROVERS"),
		ListMaxRange:        getEnvAsInt("LIST_MAX_RANGE", 1000),
		ListConcurrency:     getEnvAsInt("LIST_CONCURRENCY", 8),
	}

	var err error
	if cfg.RewardAmount, err = getEnvAsDecimal("REWARD_AMOUNT", decimal.NewFromInt(10)); err != nil {
		return nil, err
	}
	if cfg.FundPoolSeed, err = getEnvAsDecimal("FUND_POOL_SEED", decimal.Zero); err != nil {
		return nil, err
	}

	// Загрузка API ключей
	if cfg.APIKeys, err = parseAPIKeys(os.Getenv("API_KEYS")); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	switch c.LedgerBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required for %s ledger", BackendPostgres)
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH environment variable is required for %s ledger", BackendSQLite)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown LEDGER_BACKEND %q", c.LedgerBackend)
	}

	if c.RewardAmount.IsNegative() {
		return fmt.Errorf("REWARD_AMOUNT must not be negative")
	}
	if c.FundPoolSeed.IsNegative() {
		return fmt.Errorf("FUND_POOL_SEED must not be negative")
	}
	if c.ConfirmationTimeout <= 0 {
		return fmt.Errorf("CONFIRMATION_TIMEOUT must be positive")
	}
	if c.CASRetries < 1 {
		return fmt.Errorf("CAS_RETRIES must be at least 1")
	}
	if c.ListMaxRange < 1 || c.ListConcurrency < 1 {
		return fmt.Errorf("LIST_MAX_RANGE and LIST_CONCURRENCY must be positive")
	}
	return nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}

// getEnvAsDecimal - суммы токенов задаются строго, опечатка в них - ошибка запуска
func getEnvAsDecimal(key string, defaultValue decimal.Decimal) (decimal.Decimal, error) {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// getEnvAsList разбирает список через запятую, пустые элементы отбрасываются
func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseAPIKeys(value string) (map[string]string, error) {
	keys := make(map[string]string)
	if value == "" {
		return keys, nil
	}
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, actor, ok := strings.Cut(pair, ":")
		key, actor = strings.TrimSpace(key), strings.TrimSpace(actor)
		if !ok || key == "" || actor == "" {
			return nil, fmt.Errorf("invalid API_KEYS entry %q: expected key:actor", pair)
		}
		keys[key] = actor
	}
	return keys, nil
}

package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Поддерживаемые драйверы хранилища.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config описывает настройки запуска приложения.
// Все значения читаются из окружения с префиксом SALES_.
type Config struct {
	// HTTPAddr — адрес JSON API.
	HTTPAddr string
	// MetricsAddr — адрес для /metrics и health-проб.
	MetricsAddr string

	// StorageDriver — memory или postgres.
	StorageDriver string
	// PostgresDSN используется при StorageDriver=postgres.
	PostgresDSN string
	// PostgresAutoMigrate включает применение миграций при старте.
	PostgresAutoMigrate bool

	// KafkaBrokers — список брокеров; пустой список отключает публикацию событий.
	KafkaBrokers []string

	// Настройки фонового публикатора outbox.
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int

	// SeedDemoData загружает демо-набор клиентов и продуктов в память.
	// Действует только для StorageDriver=memory.
	SeedDemoData bool
}

// DefaultConfig возвращает конфигурацию для локального запуска.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageMemory,
		PostgresAutoMigrate: true,
		OutboxPollInterval:  2 * time.Second,
		OutboxBatchSize:     100,
		OutboxMaxAttempts:   5,
		SeedDemoData:        true,
	}
}

// FromEnv строит конфигурацию из переменных окружения поверх значений по умолчанию.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	cfg.HTTPAddr = getenv("SALES_HTTP_ADDR", cfg.HTTPAddr)
	cfg.MetricsAddr = getenv("SALES_METRICS_ADDR", cfg.MetricsAddr)
	cfg.StorageDriver = strings.ToLower(getenv("SALES_STORAGE_DRIVER", cfg.StorageDriver))
	cfg.PostgresDSN = getenv("SALES_POSTGRES_DSN", cfg.PostgresDSN)

	var err error
	if cfg.PostgresAutoMigrate, err = getenvBool("SALES_POSTGRES_AUTO_MIGRATE", cfg.PostgresAutoMigrate); err != nil {
		return Config{}, err
	}
	if cfg.SeedDemoData, err = getenvBool("SALES_SEED_DEMO_DATA", cfg.SeedDemoData); err != nil {
		return Config{}, err
	}

	if brokers := getenv("SALES_KAFKA_BROKERS", ""); brokers != "" {
		for _, broker := range strings.Split(brokers, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}

	if cfg.OutboxPollInterval, err = getenvDurationMS("SALES_OUTBOX_POLL_INTERVAL_MS", cfg.OutboxPollInterval); err != nil {
		return Config{}, err
	}
	if cfg.OutboxBatchSize, err = getenvInt("SALES_OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize); err != nil {
		return Config{}, err
	}
	if cfg.OutboxMaxAttempts, err = getenvInt("SALES_OUTBOX_MAX_ATTEMPTS", cfg.OutboxMaxAttempts); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

// Validate проверяет согласованность конфигурации.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("SALES_POSTGRES_DSN is required for storage driver %q", StoragePostgres)
		}
	default:
		return fmt.Errorf("unsupported storage driver: %q", c.StorageDriver)
	}

	if c.OutboxPollInterval <= 0 {
		return fmt.Errorf("outbox poll interval must be positive")
	}
	if c.OutboxBatchSize <= 0 {
		return fmt.Errorf("outbox batch size must be positive")
	}
	if c.OutboxMaxAttempts <= 0 {
		return fmt.Errorf("outbox max attempts must be positive")
	}

	return nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getenvBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, nil
}

func getenvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, nil
}

func getenvDurationMS(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

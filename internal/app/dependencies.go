package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales-oms/internal/domain"
	"github.com/vladislavdragonenkov/sales-oms/internal/fixtures"
	"github.com/vladislavdragonenkov/sales-oms/internal/storage/memory"
	"github.com/vladislavdragonenkov/sales-oms/internal/storage/postgres"
)

// Dependencies содержит инфраструктурные зависимости приложения.
type Dependencies struct {
	// Store — транзакционное хранилище workflow.
	Store domain.Transactor
	// Outbox — доступ к outbox вне транзакций, для фонового публикатора.
	Outbox domain.OutboxRepository
	// StoragePing — проверка доступности хранилища для health-проб;
	// nil, если хранилищу проба не нужна.
	StoragePing func(ctx context.Context) error
	// Close освобождает ресурсы хранилища.
	Close func() error

	Logger *log.Entry
}

// NewDependencies инициализирует хранилище согласно конфигурации.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	switch cfg.StorageDriver {
	case StorageMemory:
		store := memory.NewStore()
		if cfg.SeedDemoData {
			if err := fixtures.Seed(ctx, store); err != nil {
				return nil, fmt.Errorf("seed demo data: %w", err)
			}
			logger.Info("demo data seeded into memory storage")
		}
		return &Dependencies{
			Store:  store,
			Outbox: store.Outbox(),
			Close:  func() error { return nil },
			Logger: logger,
		}, nil

	case StoragePostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
			logger.Info("postgres migrations applied")
		}
		return &Dependencies{
			Store:       store,
			Outbox:      store.Outbox(),
			StoragePing: store.Ping,
			Close:       store.Close,
			Logger:      logger,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", cfg.StorageDriver)
	}
}

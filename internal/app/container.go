// Package app wires the ledger from configuration. All dependencies are
// built explicitly here; nothing registers itself globally.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/LeskaProgrammer/KPO/internal/analytics"
	"github.com/LeskaProgrammer/KPO/internal/api_gateway/service"
	"github.com/LeskaProgrammer/KPO/internal/config"
	"github.com/LeskaProgrammer/KPO/internal/data/memory"
	"github.com/LeskaProgrammer/KPO/internal/data/mongo"
	"github.com/LeskaProgrammer/KPO/internal/data/postgres"
	"github.com/LeskaProgrammer/KPO/internal/domain/account"
	"github.com/LeskaProgrammer/KPO/internal/domain/category"
	"github.com/LeskaProgrammer/KPO/internal/domain/operation"
	"github.com/LeskaProgrammer/KPO/internal/domain/rules"
	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
	"github.com/LeskaProgrammer/KPO/internal/impexp"
	"github.com/LeskaProgrammer/KPO/internal/ledger"
	"github.com/LeskaProgrammer/KPO/internal/platform/messaging/producers"
	"github.com/LeskaProgrammer/KPO/internal/platform/persistence"
	"github.com/LeskaProgrammer/KPO/internal/platform/system"
	"github.com/LeskaProgrammer/KPO/internal/store"
)

// Container holds one fully wired ledger
type Container struct {
	Stores      ledger.Stores
	Coordinator *ledger.Coordinator
	Catalog     *ledger.Catalog
	Reports     *ledger.Reports
	Archive     *ledger.Archive
	ImpExp      *impexp.Service
	Commands    *CommandPipeline // nil unless Kafka is enabled

	logger  *slog.Logger
	closers []func(ctx context.Context) error
}

type backings struct {
	accounts   store.BackingStore[*account.Account]
	categories store.BackingStore[*category.Category]
	operations store.BackingStore[*operation.Operation]
}

// Build connects to the configured backend and Kafka and assembles the
// ledger. On error everything opened so far is closed again.
func Build(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*Container, error) {
	c := &Container{logger: logger}

	b, err := c.openBackings(ctx, cfg)
	if err != nil {
		return nil, c.abort(ctx, err)
	}

	c.Stores = ledger.Stores{
		Accounts:   store.NewAggregateStore(logger, shared.EntityAccount, b.accounts),
		Categories: store.NewAggregateStore(logger, shared.EntityCategory, b.categories),
		Operations: store.NewAggregateStore(logger, shared.EntityOperation, b.operations),
	}

	var uow ledger.UnitOfWork = ledger.NoopUnitOfWork{}
	if cfg.Kafka.Enabled {
		journal, err := producers.NewJournalProducer(ctx, logger, &cfg.Kafka)
		if err != nil {
			return nil, c.abort(ctx, fmt.Errorf("failed to initialize journal producer: %w", err))
		}
		c.onClose(func(context.Context) error { return journal.Close() })
		uow = journal
	}

	ruleSet := rules.New(cfg.Rules.FutureTolerance)
	clock, ids := system.Clock{}, system.UUIDGenerator{}

	c.Coordinator = ledger.NewCoordinator(logger, c.Stores, ruleSet, clock, ids, uow)
	c.Catalog = ledger.NewCatalog(logger, c.Stores, clock, ids, uow)
	c.Reports = ledger.NewReports(c.Stores, analytics.NewAggregator())
	c.Archive = ledger.NewArchive(logger, c.Stores, ruleSet, clock, ids, uow)
	c.ImpExp = impexp.NewService(logger, c.Archive)

	if cfg.Kafka.Enabled {
		c.Commands, err = NewCommandPipeline(ctx, logger, cfg, c.Coordinator)
		if err != nil {
			return nil, c.abort(ctx, err)
		}
		c.onClose(func(context.Context) error { return c.Commands.Close() })
	}

	logger.Info("Ledger assembled",
		"backend", cfg.Store.Backend,
		"kafka_enabled", cfg.Kafka.Enabled,
		"future_tolerance", cfg.Rules.FutureTolerance.String())
	return c, nil
}

func (c *Container) openBackings(ctx context.Context, cfg *config.Config) (backings, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return backings{
			accounts:   memory.NewStore[*account.Account](shared.EntityAccount),
			categories: memory.NewStore[*category.Category](shared.EntityCategory),
			operations: memory.NewStore[*operation.Operation](shared.EntityOperation),
		}, nil

	case config.BackendPostgres:
		db, err := persistence.NewPostgresDB(ctx, c.logger, &cfg.Postgres)
		if err != nil {
			return backings{}, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		c.onClose(func(context.Context) error { db.Close(); return nil })
		return backings{
			accounts:   postgres.NewAccountStore(c.logger, db),
			categories: postgres.NewCategoryStore(c.logger, db),
			operations: postgres.NewOperationStore(c.logger, db),
		}, nil

	case config.BackendMongo:
		db, err := persistence.NewMongoDB(ctx, c.logger, &cfg.MongoDB)
		if err != nil {
			return backings{}, fmt.Errorf("failed to initialize MongoDB: %w", err)
		}
		c.onClose(db.Close)
		return backings{
			accounts:   mongo.NewAccountStore(c.logger, db.Database()),
			categories: mongo.NewCategoryStore(c.logger, db.Database()),
			operations: mongo.NewOperationStore(c.logger, db.Database()),
		}, nil
	}
	return backings{}, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
}

// Services exposes the ledger to the HTTP adapter
func (c *Container) Services() service.Services {
	return service.Services{
		Accounts:   c.Catalog,
		Categories: c.Catalog,
		Operations: c.Coordinator,
		Reports:    c.Reports,
		Archive:    c.ImpExp,
	}
}

func (c *Container) onClose(fn func(ctx context.Context) error) {
	c.closers = append(c.closers, fn)
}

func (c *Container) abort(ctx context.Context, err error) error {
	if closeErr := c.Close(ctx); closeErr != nil {
		c.logger.Error("Failed to release resources after startup error", "error", closeErr)
	}
	return err
}

// Close releases resources in reverse order of acquisition
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

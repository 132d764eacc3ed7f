// Package app assembles the taskboard services over a single store.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clintrovert/taskboard/internal/catalog"
	"github.com/clintrovert/taskboard/internal/config"
	"github.com/clintrovert/taskboard/internal/lifecycle"
	"github.com/clintrovert/taskboard/internal/people"
	"github.com/clintrovert/taskboard/internal/progress"
	"github.com/clintrovert/taskboard/internal/query"
	"github.com/clintrovert/taskboard/internal/store"
	"github.com/clintrovert/taskboard/internal/store/memory"
	"github.com/clintrovert/taskboard/internal/store/sqlite"
	"github.com/clintrovert/taskboard/internal/teams"
)

// App coordinates the lifecycle engine, task queries, progress, teams and
// the people directory
type App struct {
	Store    store.Store
	Snapshot *catalog.Snapshot
	Engine   *lifecycle.Engine
	Tasks    *query.Service
	Progress *progress.Aggregator
	Teams    *teams.Directory
	People   *people.Service
	logger   *zap.Logger
}

// New loads the reference snapshot from st and builds every service on it
func New(ctx context.Context, st store.Store, logger *zap.Logger) (*App, error) {
	snap, err := catalog.Load(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}

	tasks := query.NewService(st, snap, logger.Named("query"))
	a := &App{
		Store:    st,
		Snapshot: snap,
		Engine:   lifecycle.NewEngine(st, snap, logger.Named("lifecycle")),
		Tasks:    tasks,
		Progress: progress.NewAggregator(tasks, logger.Named("progress")),
		Teams:    teams.NewDirectory(st, logger.Named("teams")),
		People:   people.NewService(st, logger.Named("people")),
		logger:   logger,
	}

	logger.Info("application ready",
		zap.Int("statuses", len(snap.StatusList())),
		zap.Int("priorities", len(snap.PriorityList())),
	)
	return a, nil
}

// OpenStore opens the configured store. The memory store is seeded with the
// catalogs; a sqlite database is expected to have been migrated already.
func OpenStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		st := memory.New()
		if err := catalog.Seed(ctx, st); err != nil {
			return nil, fmt.Errorf("failed to seed memory store: %w", err)
		}
		logger.Info("using memory store")
		return st, nil
	case config.DriverSQLite:
		st, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := st.Ping(ctx); err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to reach sqlite store: %w", err)
		}
		logger.Info("using sqlite store", zap.String("dsn", cfg.DSN))
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// Migrate applies the sqlite schema and seeds the catalogs
func Migrate(ctx context.Context, dsn string, logger *zap.Logger) error {
	st, err := sqlite.Open(dsn)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return err
	}
	if err := catalog.Seed(ctx, st); err != nil {
		return fmt.Errorf("failed to seed catalogs: %w", err)
	}
	logger.Info("database migrated", zap.String("dsn", dsn))
	return nil
}

// Close releases the store
func (a *App) Close() error {
	return a.Store.Close()
}

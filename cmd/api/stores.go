package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/audioforge/studio/internal/api/http/handlers"
	"github.com/audioforge/studio/internal/config"
	"github.com/audioforge/studio/internal/persistence"
	"github.com/audioforge/studio/internal/repository"
)

type stores struct {
	users   repository.UserRepository
	history repository.HistoryRepository
	pinger  handlers.Pinger
	close   func()
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		pool := pg.PoolHandle()
		return &stores{
			users:   repository.NewUserRepository(pool),
			history: repository.NewHistoryRepository(pool),
			pinger:  pg,
			close:   pg.Close,
		}, nil

	case config.StoreMongo:
		mg, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		if err := repository.EnsureMongoIndexes(ctx, mg.DB); err != nil {
			mg.Close(ctx)
			return nil, err
		}
		return &stores{
			users:   repository.NewMongoUserRepository(mg.DB),
			history: repository.NewMongoHistoryRepository(mg.DB),
			pinger:  mg,
			close:   func() { mg.Close(context.Background()) },
		}, nil

	case config.StoreMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		mem := repository.NewMemoryStore()
		return &stores{users: mem.Users(), history: mem.History(), close: func() {}}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

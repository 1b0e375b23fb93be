package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Xausdorf/mattermost-governance/internal/notify"
	"github.com/Xausdorf/mattermost-governance/internal/repository/memory"
	"github.com/Xausdorf/mattermost-governance/internal/repository/pgadapter"
	"github.com/Xausdorf/mattermost-governance/internal/repository/tarantool"
	"github.com/Xausdorf/mattermost-governance/internal/repository/ttadapter"
	"github.com/Xausdorf/mattermost-governance/internal/usecase"
)

const (
	driverTarantool = "tarantool"
	driverPostgres  = "postgres"
	driverMemory    = "memory"
)

type storage struct {
	polls   usecase.PollRepository
	votes   usecase.VoteRepository
	journal notify.Journal
	migrate func(ctx context.Context) error
	close   func() error
}

func storageDriver() string {
	driver := os.Getenv("STORAGE_DRIVER")
	if driver == "" {
		driver = driverTarantool
	}
	return driver
}

func openStorage(ctx context.Context, driver string, logger *slog.Logger) (*storage, error) {
	switch driver {
	case driverTarantool:
		cfg, err := tarantool.LoadConfig()
		if err != nil {
			return nil, err
		}
		conn, err := tarantool.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to tarantool", "address", cfg.Address)
		return &storage{
			polls:   ttadapter.NewPollRepository(conn),
			votes:   ttadapter.NewVoteRepository(conn),
			journal: ttadapter.NewJournal(conn),
			migrate: func(ctx context.Context) error { return tarantool.Migrate(ctx, conn) },
			close:   conn.Close,
		}, nil
	case driverPostgres:
		dsn, err := pgadapter.LoadDSN()
		if err != nil {
			return nil, err
		}
		db, err := pgadapter.Connect(ctx, dsn)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to postgres")
		return &storage{
			polls:   pgadapter.NewPollRepository(db, logger),
			votes:   pgadapter.NewVoteRepository(db, logger),
			journal: pgadapter.NewJournal(db, logger),
			migrate: func(ctx context.Context) error { return pgadapter.Migrate(ctx, db) },
			close:   func() error { return pgadapter.Close(db) },
		}, nil
	case driverMemory:
		logger.Warn("using in-memory storage, state is lost on exit")
		return &storage{
			polls:   memory.NewPollRepository(),
			votes:   memory.NewVoteRepository(),
			journal: memory.NewJournal(),
			migrate: func(context.Context) error { return nil },
			close:   func() error { return nil },
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

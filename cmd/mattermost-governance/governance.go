package main

import (
	"context"
	"log/slog"

	"github.com/Xausdorf/mattermost-governance/internal/host"
	"github.com/Xausdorf/mattermost-governance/internal/notify"
	"github.com/Xausdorf/mattermost-governance/internal/usecase"
)

// newGovernance wires the service to storage and to the log and journal sinks.
func newGovernance(store *storage, logger *slog.Logger) (*usecase.Governance, *host.Runtime) {
	rt := host.NewRuntime(host.SystemClock{},
		notify.NewLogSink(logger),
		notify.NewJournalSink(store.journal, logger),
	)
	return usecase.NewGovernance(store.polls, store.votes, rt, logger), rt
}

func withStorage(ctx context.Context, logger *slog.Logger, fn func(store *storage) error) error {
	store, err := openStorage(ctx, storageDriver(), logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.close(); err != nil {
			logger.Warn("could not close storage", "error", err.Error())
		}
	}()
	return fn(store)
}

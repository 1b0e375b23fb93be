package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/Xausdorf/mattermost-governance/internal/domain"
	"github.com/Xausdorf/mattermost-governance/internal/host"
	"github.com/Xausdorf/mattermost-governance/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	assert.Equal(t, driverTarantool, storageDriver())

	t.Setenv("STORAGE_DRIVER", driverMemory)
	assert.Equal(t, driverMemory, storageDriver())
}

func TestOpenStorageUnknownDriver(t *testing.T) {
	_, err := openStorage(context.Background(), "sqlite", slog.Default())
	assert.ErrorContains(t, err, `unknown storage driver "sqlite"`)
}

func TestMemoryStorageJournalsEvents(t *testing.T) {
	store, err := openStorage(context.Background(), driverMemory, slog.Default())
	require.NoError(t, err)
	require.NoError(t, store.migrate(context.Background()))

	gov, _ := newGovernance(store, slog.Default())
	ctx := host.WithCaller(context.Background(), "alice")
	start := domain.TimestampOf(host.SystemClock{}.Now()) + 60_000
	require.NoError(t, gov.CreatePoll(ctx, "p1", 2, start, start+60_000))

	envelopes := store.journal.(*memory.Journal).Envelopes()
	require.Len(t, envelopes, 1)
	assert.Equal(t, domain.EventPollCreated, envelopes[0].Name)
	assert.NoError(t, store.close())
}

func TestNewLogger(t *testing.T) {
	ctx := context.Background()
	assert.True(t, newLogger("debug").Enabled(ctx, slog.LevelDebug))
	assert.False(t, newLogger("").Enabled(ctx, slog.LevelDebug))
	assert.False(t, newLogger("WARN").Enabled(ctx, slog.LevelInfo))
	assert.True(t, newLogger("error").Enabled(ctx, slog.LevelError))
}

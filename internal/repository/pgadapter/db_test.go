package pgadapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDSN(t *testing.T) {
	t.Setenv("PG_DSN", "")
	_, err := LoadDSN()
	assert.ErrorIs(t, err, ErrMissingDSN)

	t.Setenv("PG_DSN", "postgres://governance@localhost/governance")
	dsn, err := LoadDSN()
	assert.NoError(t, err)
	assert.Equal(t, "postgres://governance@localhost/governance", dsn)
}

func TestConnectRequiresDSN(t *testing.T) {
	_, err := Connect(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingDSN)
}

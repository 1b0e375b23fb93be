package tarantool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults address", func(t *testing.T) {
		t.Setenv("TT_ADDRESS", "")
		t.Setenv("TT_USER", "governance")
		t.Setenv("TT_PASSWORD", "secret")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, Config{Address: "127.0.0.1:3301", User: "governance", Password: "secret"}, cfg)
	})

	t.Run("requires credentials", func(t *testing.T) {
		t.Setenv("TT_USER", "")
		t.Setenv("TT_PASSWORD", "secret")

		_, err := LoadConfig()
		assert.ErrorIs(t, err, ErrMissingCredentials)
	})
}

package tarantool

import (
	"context"
	"errors"
	"os"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/tarantool/go-tarantool/v2"
)

const (
	reconnectSeconds = 3
	maxReconnects    = 5
)

var ErrMissingCredentials = errors.New("tarantool user and password must be set")

type Config struct {
	Address  string
	User     string
	Password string
}

// LoadConfig reads TT_ADDRESS, TT_USER and TT_PASSWORD.
func LoadConfig() (Config, error) {
	var cfg Config

	cfg.Address = os.Getenv("TT_ADDRESS")
	if cfg.Address == "" {
		cfg.Address = "127.0.0.1:3301"
	}
	cfg.User = os.Getenv("TT_USER")
	cfg.Password = os.Getenv("TT_PASSWORD")
	if cfg.User == "" || cfg.Password == "" {
		return cfg, ErrMissingCredentials
	}

	return cfg, nil
}

func Connect(ctx context.Context, cfg Config) (*tarantool.Connection, error) {
	dialer := tarantool.NetDialer{
		Address:  cfg.Address,
		User:     cfg.User,
		Password: cfg.Password,
	}
	opts := tarantool.Opts{
		Timeout:       time.Second,
		Reconnect:     reconnectSeconds * time.Second,
		MaxReconnects: maxReconnects,
	}

	conn, err := tarantool.Connect(ctx, dialer, opts)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "could not connect to tarantool at %s", cfg.Address)
	}
	return conn, nil
}

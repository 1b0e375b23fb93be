package main

import (
	"log/slog"

	"github.com/Xausdorf/mattermost-governance/internal/gateway/bot"
	"github.com/Xausdorf/mattermost-governance/internal/gateway/httpapi"
	"github.com/spf13/cobra"
)

func init() {
	apiCmd.Flags().String("addr", "", "listen address, overrides HTTP_ADDR")
	rootCmd.AddCommand(botCmd, apiCmd, migrateCmd)
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the mattermost bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := slog.Default()

		cfg, err := bot.LoadConfig()
		if err != nil {
			return err
		}

		return withStorage(ctx, logger, func(store *storage) error {
			gov, rt := newGovernance(store, logger)

			pollingBot, err := bot.NewPollingBot(cfg, gov, logger)
			if err != nil {
				return err
			}
			defer pollingBot.Close()
			if cfg.BroadcastsEvents() {
				rt.Subscribe(pollingBot)
			}

			return pollingBot.Listen(ctx)
		})
	},
}

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := slog.Default()

		cfg := httpapi.LoadConfig()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}

		return withStorage(ctx, logger, func(store *storage) error {
			gov, _ := newGovernance(store, logger)
			return httpapi.NewServer(cfg, gov, logger).ListenAndServe(ctx)
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the storage schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := slog.Default()

		return withStorage(ctx, logger, func(store *storage) error {
			if err := store.migrate(ctx); err != nil {
				return err
			}
			logger.Info("storage schema is up to date", "driver", storageDriver())
			return nil
		})
	},
}

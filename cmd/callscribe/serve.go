package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/callscribe/internal/api"
	"github.com/MikeSquared-Agency/callscribe/internal/store"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and NATS trigger for the pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cc.requireDatabase(); err != nil {
				return err
			}
			if err := cc.requireGemini(); err != nil {
				return err
			}
			ctx := cmd.Context()
			logger := cc.logger
			logger.Info("callscribe starting", "port", cc.cfg.Port)

			db, err := store.New(ctx, cc.cfg.DatabaseURL, cc.cfg.DBSchema, cc.logger)
			if err != nil {
				return err
			}
			defer db.Close()
			logger.Info("database connected")

			proc, hc, err := newPipeline(ctx, cc.cfg, db, logger)
			if err != nil {
				return err
			}
			if hc != nil {
				defer hc.Close()
				if err := hc.SubscribeCallRequests(ctx, proc.HandleCallRequested); err != nil {
					return err
				}
			} else {
				logger.Warn("NATS not configured, HTTP trigger only")
			}

			srv := api.NewServer(cc.cfg.Port, cc.cfg.APIToken, proc, logger)
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			logger.Info("callscribe ready", "port", cc.cfg.Port, "auth", cc.cfg.APIToken != "")

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("http shutdown", "error", err)
			}
			logger.Info("callscribe stopped")
			return nil
		},
	}
}

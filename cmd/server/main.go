package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/rexlManu/ClimbChallenge/internal/config"
	"github.com/rexlManu/ClimbChallenge/internal/constants"
	fxmodules "github.com/rexlManu/ClimbChallenge/internal/fx"
	"github.com/rexlManu/ClimbChallenge/internal/server"
	"github.com/rexlManu/ClimbChallenge/internal/tracker"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
		fx.Invoke(runPoller),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	apiServer *server.Server,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: apiServer.Router(),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}

// runPoller drives the tracking pipeline on a fixed interval. The first
// batch runs immediately on startup so a fresh deployment does not wait a
// full interval for data.
func runPoller(
	lc fx.Lifecycle,
	poller *tracker.Poller,
	cfg *config.Config,
	logger zerolog.Logger,
) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)

				logger.Info().Dur("interval", cfg.PollInterval).Msg("poller starting")
				runBatch(ctx, poller, logger)

				ticker := time.NewTicker(cfg.PollInterval)
				defer ticker.Stop()

				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						runBatch(ctx, poller, logger)
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				logger.Info().Msg("poller stopped")
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

func runBatch(ctx context.Context, poller *tracker.Poller, logger zerolog.Logger) {
	start := time.Now()
	if err := poller.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("poll batch failed")
		return
	}
	logger.Debug().Dur("duration", time.Since(start)).Msg("poll batch completed")
}

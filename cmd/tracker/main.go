package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"lol-encounters/internal/config"
	"lol-encounters/internal/constants"
	"lol-encounters/internal/events"
	fxmodules "lol-encounters/internal/fx"
	"lol-encounters/internal/lcu"
	"lol-encounters/internal/middleware"
	"lol-encounters/internal/monitor"
	"lol-encounters/internal/server"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runTracker),
	).Run()
}

func runTracker(
	lc fx.Lifecycle,
	trackerServer *server.TrackerServer,
	mon *monitor.Monitor,
	conn *lcu.Connector,
	publisher events.Publisher,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	mux := http.NewServeMux()

	path, handler := server.NewTrackerHandler(trackerServer)
	mux.Handle(path, middleware.Chain(handler, middleware.RequestID(logger), middleware.CORS()))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: mux,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := conn.Start(); err != nil {
				return err
			}
			mon.Start()

			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down tracker")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			srvErr := srv.Shutdown(shutdownCtx)
			if srvErr != nil {
				logger.Error().Err(srvErr).Msg("server shutdown failed")
			}

			mon.Stop()
			if err := conn.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing lockfile watcher")
			}
			if err := publisher.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing event publisher")
			}
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			if srvErr != nil {
				return srvErr
			}
			logger.Info().Msg("tracker stopped gracefully")
			return nil
		},
	})
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/Huddle/internal/adapters/ai"
	router "github.com/dkeye/Huddle/internal/adapters/http"
	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/config"
	"github.com/dkeye/Huddle/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	zerolog.SetGlobalLevel(cfg.ZerologLevel())

	rooms := core.NewRoomRegistry()
	telemetry := core.NewTelemetryStore()
	transcripts := core.NewTranscriptLog()
	sessions := app.NewSessions()

	var limiter *app.StatsLimiter
	if cfg.StatsRate.Limit > 0 {
		limiter = app.NewStatsLimiter(cfg.StatsRate.Limit, cfg.StatsRate.Interval)
	}
	dispatcher := app.NewDispatcher(rooms, telemetry, transcripts, sessions, limiter)

	aiClient := ai.NewClient(cfg.AI.BaseURL, cfg.AI.Timeout)
	if !aiClient.Configured() {
		log.Warn().Str("module", "main").Msg("ai.base_url not set, transcription and summary disabled")
	}

	r := router.SetupRouter(ctx, cfg, router.Deps{
		Dispatcher: dispatcher,
		Rooms:      rooms,
		Telemetry:  telemetry,
		Transcript: transcripts,
		AI:         aiClient,
	})
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("Huddle server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	if cfg.Reaper.IdleAfter > 0 {
		reaper := app.NewReaper(rooms, telemetry, transcripts, cfg.Reaper.IdleAfter, cfg.Reaper.Interval)
		g.Go(func() error { return reaper.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Int("sessions", sessions.CancelAll()).Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
	log.Info().Msg("Server exited gracefully")
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/first5455/vibe-tournament-organization-sub000/config"
	"github.com/first5455/vibe-tournament-organization-sub000/db"
	"github.com/first5455/vibe-tournament-organization-sub000/repositories"
	"github.com/first5455/vibe-tournament-organization-sub000/services"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Duration("scheduler_interval", cfg.SchedulerInterval))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	txRunner := repositories.NewTxRunner(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	ratingRepo := repositories.NewPostgresRatingRepository(dbConn)
	logger.Info("repositories initialized")

	tournamentService := services.NewTournamentService(
		txRunner,
		tournamentRepo,
		participantRepo,
		matchRepo,
		ratingRepo,
		logger,
	)
	logger.Info("services initialized")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(cfg.SchedulerInterval)
	defer ticker.Stop()
	logger.Info("tournament start scheduler started", slog.Duration("interval", cfg.SchedulerInterval))

	// Run once immediately at startup, then on ticker.
	if err := tournamentService.StartDueTournaments(ctx); err != nil {
		logger.Error("scheduler: initial run failed", slog.Any("error", err))
	}

	for {
		select {
		case <-ticker.C:
			if err := tournamentService.StartDueTournaments(ctx); err != nil {
				logger.Error("scheduler: periodic run failed", slog.Any("error", err))
			}
		case <-ctx.Done():
			logger.Info("shutdown signal received, stopping scheduler")
			return
		}
	}
}

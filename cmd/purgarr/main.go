package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/amaumene/purgarr/internal/api"
	"github.com/amaumene/purgarr/internal/audit"
	"github.com/amaumene/purgarr/internal/config"
	"github.com/amaumene/purgarr/internal/controllers"
	"github.com/amaumene/purgarr/internal/models"
	"github.com/amaumene/purgarr/internal/scheduler"
	"github.com/amaumene/purgarr/internal/services/overseerr"
	"github.com/amaumene/purgarr/internal/services/plex"
	"github.com/amaumene/purgarr/internal/services/radarr"
	"github.com/amaumene/purgarr/internal/services/sonarr"
	"github.com/amaumene/purgarr/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting Purgarr")
	logger.WithField("config_dir", filepath.Dir(cfg.DatabaseFile)).Info("Configuration loaded")

	// 3. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Load protected titles
	exclusions, err := utils.LoadExclusions(cfg.ProtectedFile)
	if err != nil {
		logger.WithError(err).Warn("Failed to load protected titles, continuing without them")
		exclusions = &utils.Exclusions{}
	} else {
		logger.WithField("count", exclusions.Count()).Info("Protected titles loaded")
	}

	// 5. Initialize target clients
	sessions := plex.NewSessionCache()
	plexClient, err := plex.NewClient(cfg, sessions, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Plex client: %w", err)
	}
	logger.Info("Plex client initialized")

	var secondaries []controllers.TargetAdapter
	if cfg.SonarrEnabled() {
		sonarrClient, err := sonarr.NewClient(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize Sonarr client: %w", err)
		}
		secondaries = append(secondaries, sonarrClient)
		logger.Info("Sonarr client initialized")
	}
	if cfg.RadarrEnabled() {
		radarrClient, err := radarr.NewClient(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize Radarr client: %w", err)
		}
		secondaries = append(secondaries, radarrClient)
		logger.Info("Radarr client initialized")
	}
	if cfg.OverseerrEnabled() {
		overseerrClient, err := overseerr.NewClient(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize Overseerr client: %w", err)
		}
		secondaries = append(secondaries, overseerrClient)
		logger.Info("Overseerr client initialized")
	}

	// 6. Initialize controllers
	recorder := audit.NewRecorder(db, logger)
	cascadeCtrl := controllers.NewCascadeController(
		db, plexClient, secondaries, recorder, cfg.TargetTimeout, cfg.CascadeWorkers, logger)
	retentionCtrl := controllers.NewRetentionController(db, cascadeCtrl, exclusions, controllers.RetentionPolicy{
		GracePeriodDays:         cfg.GracePeriodDays,
		InactivityThresholdDays: cfg.InactivityThresholdDays,
		MinRating:               cfg.MinRating,
		DryRun:                  cfg.RetentionDryRun,
	}, logger)
	logger.Info("Controllers initialized")

	// 7. Initialize scheduler
	sched := scheduler.NewScheduler(retentionCtrl, cfg.RetentionSchedule, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 8. Initialize HTTP server
	server := api.NewServer(cfg, db, cascadeCtrl, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 9. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Purgarr is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("Purgarr stopped")
	return nil
}

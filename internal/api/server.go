package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amaumene/purgarr/internal/api/handlers"
	"github.com/amaumene/purgarr/internal/api/middleware"
	"github.com/amaumene/purgarr/internal/config"
	"github.com/amaumene/purgarr/internal/controllers"
	"github.com/amaumene/purgarr/internal/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	server      *http.Server
	db          *models.Database
	cascadeCtrl *controllers.CascadeController
	logger      *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, db *models.Database, cascadeCtrl *controllers.CascadeController, logger *logrus.Logger) *Server {
	s := &Server{
		db:          db,
		cascadeCtrl: cascadeCtrl,
		logger:      logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(mux, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // cascade batches outlive ordinary requests
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	// Health check
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)

	// Catalog status
	statusHandler := handlers.NewStatusHandler(s.db, s.logger)
	mux.HandleFunc("/status", statusHandler.ServeHTTP)

	// Cascade deletion
	deletionHandler := handlers.NewDeletionHandler(s.cascadeCtrl, s.logger)
	mux.HandleFunc("/api/deletions/execute", deletionHandler.Execute)
	mux.HandleFunc("/api/deletions/progress", deletionHandler.Progress)

	// Audit trail
	eventsHandler := handlers.NewEventsHandler(s.db, s.logger)
	mux.HandleFunc("/api/deletions/events", eventsHandler.ServeHTTP)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

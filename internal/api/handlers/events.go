package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/amaumene/purgarr/internal/models"
	"github.com/sirupsen/logrus"
)

const defaultEventLimit = 100

// EventsHandler serves the deletion audit trail
type EventsHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(db *models.Database, logger *logrus.Logger) *EventsHandler {
	return &EventsHandler{db: db, logger: logger}
}

// ServeHTTP handles GET /api/deletions/events
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	events, err := h.db.GetDeletionEvents(limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load deletion events")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/amaumene/purgarr/internal/models"
	"github.com/sirupsen/logrus"
)

// StatusHandler handles catalog status requests
type StatusHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *models.Database, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		db:     db,
		logger: logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	TotalItems   int            `json:"total_items"`
	Active       int            `json:"active"`
	Retired      int            `json:"retired"`
	ItemsByType  map[string]int `json:"items_by_type"`
	TotalBytes   int64          `json:"total_bytes"`
	RetiredBytes int64          `json:"retired_bytes"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	medias, err := h.db.GetAllMedias()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get catalog items")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := StatusResponse{
		TotalItems:  len(medias),
		ItemsByType: make(map[string]int),
	}

	for _, media := range medias {
		switch media.Status {
		case models.StatusActive:
			response.Active++
			response.TotalBytes += media.FileSizeBytes
		case models.StatusRetired:
			response.Retired++
			response.RetiredBytes += media.FileSizeBytes
		}

		response.ItemsByType[string(media.MediaType)]++
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

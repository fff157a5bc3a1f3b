package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/amaumene/purgarr/internal/controllers"
	"github.com/sirupsen/logrus"
)

// DeletionHandler handles cascade deletion requests and progress polling
type DeletionHandler struct {
	cascadeCtrl *controllers.CascadeController
	logger      *logrus.Logger
}

// NewDeletionHandler creates a new deletion handler
func NewDeletionHandler(cascadeCtrl *controllers.CascadeController, logger *logrus.Logger) *DeletionHandler {
	return &DeletionHandler{
		cascadeCtrl: cascadeCtrl,
		logger:      logger,
	}
}

// Execute handles POST /api/deletions/execute
func (h *DeletionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request controllers.CascadeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(request.CandidateIDs) == 0 {
		http.Error(w, "candidate_ids must not be empty", http.StatusBadRequest)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"candidates": len(request.CandidateIDs),
		"dry_run":    request.DryRun,
	}).Info("Cascade deletion requested")

	result, err := h.cascadeCtrl.ExecuteCascade(r.Context(), request)
	if err != nil {
		h.logger.WithError(err).Error("Cascade deletion failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Progress handles GET /api/deletions/progress
func (h *DeletionHandler) Progress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.cascadeCtrl.Progress().Snapshot())
}

package audit

import (
	"fmt"

	"github.com/amaumene/purgarr/internal/models"
	"github.com/sirupsen/logrus"
)

// Recorder appends immutable deletion events and batch summaries to the
// local store. An unlogged deletion is an operational blind spot, so append
// failures are wrapped in ErrAuditWriteFailed and escalated by the caller.
type Recorder struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewRecorder creates a new audit recorder
func NewRecorder(db *models.Database, logger *logrus.Logger) *Recorder {
	return &Recorder{db: db, logger: logger}
}

// AppendEvent durably stores one deletion event
func (r *Recorder) AppendEvent(event *models.DeletionEvent) error {
	if err := r.db.AppendDeletionEvent(event); err != nil {
		return fmt.Errorf("%w: %v", models.ErrAuditWriteFailed, err)
	}

	r.logger.WithFields(logrus.Fields{
		"candidate_id": event.CandidateID,
		"title":        event.Title,
		"status":       event.OverallStatus,
		"dry_run":      event.DryRun,
	}).Info("Deletion event recorded")

	return nil
}

// Summarize stores the one-per-batch activity log entry
func (r *Recorder) Summarize(entry *models.ActivityLog) error {
	if err := r.db.AppendActivityLog(entry); err != nil {
		return fmt.Errorf("%w: %v", models.ErrAuditWriteFailed, err)
	}
	return nil
}

package controllers

import (
	"context"
	"fmt"
	"time"

	"github.com/amaumene/purgarr/internal/models"
	"github.com/amaumene/purgarr/internal/utils"
	"github.com/sirupsen/logrus"
)

// RetentionPolicy is the immutable rule applied by scheduled scans.
type RetentionPolicy struct {
	GracePeriodDays         int
	InactivityThresholdDays int
	MinRating               float64 // items rated at or above this are kept; 0 disables
	DryRun                  bool
}

// CatalogReader lists active catalog items for retention scans.
type CatalogReader interface {
	GetActiveCandidates() ([]*models.Media, error)
}

// RetentionController selects deletion candidates from the local catalog and
// feeds them into the cascade controller.
type RetentionController struct {
	catalog    CatalogReader
	cascade    *CascadeController
	exclusions *utils.Exclusions
	policy     RetentionPolicy
	logger     *logrus.Logger
}

// NewRetentionController creates a new retention controller
func NewRetentionController(
	catalog CatalogReader,
	cascade *CascadeController,
	exclusions *utils.Exclusions,
	policy RetentionPolicy,
	logger *logrus.Logger,
) *RetentionController {
	return &RetentionController{
		catalog:    catalog,
		cascade:    cascade,
		exclusions: exclusions,
		policy:     policy,
		logger:     logger,
	}
}

// ScanCandidates returns the active catalog items past the grace period, not
// viewed within the inactivity threshold, below the optional rating cap and
// not on the protected-titles list.
func (r *RetentionController) ScanCandidates() ([]*models.Media, error) {
	medias, err := r.catalog.GetActiveCandidates()
	if err != nil {
		return nil, fmt.Errorf("failed to list active candidates: %w", err)
	}

	now := time.Now()
	graceCutoff := now.AddDate(0, 0, -r.policy.GracePeriodDays)
	inactivityCutoff := now.AddDate(0, 0, -r.policy.InactivityThresholdDays)

	var candidates []*models.Media
	for _, media := range medias {
		if media.AddedAt.After(graceCutoff) {
			continue
		}

		lastViewed := media.AddedAt // never watched falls back to the add date
		if media.LastViewedAt != nil {
			lastViewed = *media.LastViewedAt
		}
		if lastViewed.After(inactivityCutoff) {
			continue
		}

		if r.policy.MinRating > 0 && media.Rating >= r.policy.MinRating {
			continue
		}

		if r.exclusions.IsProtected(media.Title) {
			r.logger.WithField("title", media.Title).Debug("Candidate protected by exclusion list")
			continue
		}

		candidates = append(candidates, media)
	}

	r.logger.WithFields(logrus.Fields{
		"scanned":    len(medias),
		"candidates": len(candidates),
	}).Info("Retention scan completed")

	return candidates, nil
}

// Run performs one scan and cascades the resulting candidates with the
// policy's dry-run flag.
func (r *RetentionController) Run(ctx context.Context) error {
	candidates, err := r.ScanCandidates()
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		r.logger.Info("No retention candidates found")
		return nil
	}

	ids := make([]string, 0, len(candidates))
	for _, media := range candidates {
		ids = append(ids, media.ID)
	}

	result, err := r.cascade.ExecuteCascade(ctx, CascadeRequest{
		CandidateIDs: ids,
		DryRun:       r.policy.DryRun,
	})
	if err != nil {
		return fmt.Errorf("retention cascade failed: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"deleted": result.Deleted,
		"partial": result.Partial,
		"failed":  result.Failed,
		"dry_run": r.policy.DryRun,
	}).Info("Retention run finished")

	return nil
}

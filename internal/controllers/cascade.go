package controllers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/amaumene/purgarr/internal/metrics"
	"github.com/amaumene/purgarr/internal/models"
	"github.com/sirupsen/logrus"
)

// CandidateStore provides the catalog rows a cascade reads and retires.
type CandidateStore interface {
	GetCandidateByID(id string) (*models.Media, error)
	RetireCandidate(id string) error
}

// AuditRecorder appends immutable deletion events and batch summaries.
type AuditRecorder interface {
	AppendEvent(event *models.DeletionEvent) error
	Summarize(entry *models.ActivityLog) error
}

// TargetAdapter is the capability contract every external system implements.
// Locate and Delete return models.ErrNotFound when the item is absent on the
// target, which the orchestrator treats as a successful no-op.
type TargetAdapter interface {
	Target() models.Target
	Key(m *models.Media) (string, bool)
	Locate(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, handle string) (string, error)
}

// CascadeRequest is one batch of candidates to delete across all targets.
type CascadeRequest struct {
	CandidateIDs []string `json:"candidate_ids"`
	DryRun       bool     `json:"dry_run"`
}

// CascadeController drives coordinated deletions across the primary media
// server and the secondary automation targets, recording one audit event per
// candidate. Adapter errors stay local to one target outcome; the only
// batch-fatal condition is an empty candidate list.
type CascadeController struct {
	store       CandidateStore
	primary     TargetAdapter
	secondaries map[models.Target]TargetAdapter
	recorder    AuditRecorder
	progress    *Progress
	inflight    *inflightRegistry

	targetTimeout time.Duration
	workers       int
	logger        *logrus.Logger
}

// NewCascadeController creates a new cascade deletion controller.
// Secondaries may omit unconfigured integrations; those targets yield
// skipped outcomes.
func NewCascadeController(
	store CandidateStore,
	primary TargetAdapter,
	secondaries []TargetAdapter,
	recorder AuditRecorder,
	targetTimeout time.Duration,
	workers int,
	logger *logrus.Logger,
) *CascadeController {
	byTarget := make(map[models.Target]TargetAdapter, len(secondaries))
	for _, adapter := range secondaries {
		byTarget[adapter.Target()] = adapter
	}
	if workers < 1 {
		workers = 1
	}

	return &CascadeController{
		store:         store,
		primary:       primary,
		secondaries:   byTarget,
		recorder:      recorder,
		progress:      NewProgress(),
		inflight:      newInflightRegistry(),
		targetTimeout: targetTimeout,
		workers:       workers,
		logger:        logger,
	}
}

// Progress exposes the batch tracker for the polling endpoint
func (c *CascadeController) Progress() *Progress {
	return c.progress
}

// candidateResult is the terminal outcome of one candidate's cascade
type candidateResult struct {
	event       *models.DeletionEvent
	sizeBytes   int64
	skipped     bool
	auditFailed bool
}

// ExecuteCascade processes a batch of candidates with bounded parallelism.
// Cancelling ctx stops scheduling of not-yet-started candidates; cascades
// already running always finish, since a half-applied cascade is worse than
// a late one.
func (c *CascadeController) ExecuteCascade(ctx context.Context, request CascadeRequest) (*models.BatchResult, error) {
	if len(request.CandidateIDs) == 0 {
		return nil, fmt.Errorf("candidate list must not be empty")
	}

	start := time.Now()
	metrics.Batches.Inc()
	c.progress.Begin(len(request.CandidateIDs))

	c.logger.WithFields(logrus.Fields{
		"candidates": len(request.CandidateIDs),
		"dry_run":    request.DryRun,
	}).Info("Starting cascade deletion batch")

	jobs := make(chan string)
	resultCh := make(chan candidateResult, len(request.CandidateIDs))

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				resultCh <- c.processCandidate(ctx, id, request.DryRun)
			}
		}()
	}

	scheduled := 0
dispatch:
	for _, id := range request.CandidateIDs {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- id:
			scheduled++
		}
	}
	close(jobs)
	wg.Wait()
	close(resultCh)

	result := &models.BatchResult{TotalCandidates: len(request.CandidateIDs)}
	auditFailures := 0
	for r := range resultCh {
		if r.skipped {
			result.Skipped++
			continue
		}
		if r.event != nil {
			result.Events = append(result.Events, r.event)
		}
		if r.auditFailed {
			auditFailures++
			result.Failed++
			continue
		}
		switch r.event.OverallStatus {
		case models.EventCompleted:
			result.Deleted++
			result.TotalSizeBytes += r.sizeBytes
		case models.EventPartial:
			result.Partial++
			result.TotalSizeBytes += r.sizeBytes
		default:
			result.Failed++
		}
	}

	// Candidates never scheduled because the batch was cancelled
	if unscheduled := len(request.CandidateIDs) - scheduled; unscheduled > 0 {
		result.Skipped += unscheduled
	}

	duration := time.Since(start)
	metrics.BatchDuration.Observe(duration.Seconds())

	status := models.BatchCompleted
	message := fmt.Sprintf("%d deleted, %d partial, %d failed, %d skipped",
		result.Deleted, result.Partial, result.Failed, result.Skipped)
	switch {
	case ctx.Err() != nil:
		status = models.BatchError
		message = "batch cancelled: " + message
		c.progress.Fail(message)
	case auditFailures > 0:
		status = models.BatchError
		message = fmt.Sprintf("%d audit writes failed: %s", auditFailures, message)
		c.progress.Fail(message)
	default:
		c.progress.Finish(message)
	}

	summary := &models.ActivityLog{
		Action:     "cascade_deletion",
		DryRun:     request.DryRun,
		Total:      result.TotalCandidates,
		Deleted:    result.Deleted,
		Partial:    result.Partial,
		Failed:     result.Failed,
		Skipped:    result.Skipped,
		SizeBytes:  result.TotalSizeBytes,
		Status:     status,
		DurationMs: duration.Milliseconds(),
	}
	if err := c.recorder.Summarize(summary); err != nil {
		c.logger.WithError(err).Error("Failed to record batch summary")
	}

	c.logger.WithFields(logrus.Fields{
		"total":   result.TotalCandidates,
		"deleted": result.Deleted,
		"partial": result.Partial,
		"failed":  result.Failed,
		"skipped": result.Skipped,
		"dry_run": request.DryRun,
	}).Info("Cascade deletion batch finished")

	return result, nil
}

// processCandidate runs one full cascade. It detaches from the batch context
// so an in-flight cascade is never aborted mid-way; individual adapter calls
// stay bounded by the per-call timeout.
func (c *CascadeController) processCandidate(ctx context.Context, id string, dryRun bool) candidateResult {
	if !c.inflight.acquire(id) {
		c.logger.WithError(models.ErrCascadeInProgress).WithField("candidate_id", id).Warn("Rejecting duplicate cascade request")
		c.progress.Skip()
		return candidateResult{skipped: true}
	}
	defer c.inflight.release(id)

	cascadeCtx := context.WithoutCancel(ctx)

	media, err := c.store.GetCandidateByID(id)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			c.logger.WithError(err).WithField("candidate_id", id).Error("Candidate lookup failed")
		}
		return c.finishCandidate(&models.DeletionEvent{
			CandidateID:   id,
			DryRun:        dryRun,
			Outcomes:      failedOutcomes(models.TargetPlex, "candidate not found"),
			OverallStatus: models.EventFailed,
			CanUndo:       dryRun,
		}, 0)
	}

	c.progress.SetCurrentItem(media.Title)

	// A malformed rating key written by a buggy importer must never abort
	// the batch; it downgrades this one candidate to failed.
	if key, ok := c.primary.Key(media); !ok || !validRatingKey(key) {
		c.logger.WithFields(logrus.Fields{
			"candidate_id": id,
			"plex_key":     media.PlexKey,
		}).Warn("Candidate has malformed primary identifier")
		return c.finishCandidate(&models.DeletionEvent{
			CandidateID:   id,
			Title:         media.Title,
			MediaType:     media.MediaType,
			DryRun:        dryRun,
			Outcomes:      failedOutcomes(models.TargetPlex, models.ErrInvalidIdentifier.Error()),
			OverallStatus: models.EventFailed,
			CanUndo:       dryRun,
		}, 0)
	}

	if dryRun {
		return c.finishCandidate(c.simulateCascade(media), media.FileSizeBytes)
	}

	event := c.runCascade(cascadeCtx, media)
	return c.finishCandidate(event, media.FileSizeBytes)
}

// runCascade executes the ordered cascade: the primary target gates all
// secondary work, and the local catalog row is retired only after a
// confirmed primary deletion.
func (c *CascadeController) runCascade(ctx context.Context, media *models.Media) *models.DeletionEvent {
	event := &models.DeletionEvent{
		CandidateID: media.ID,
		Title:       media.Title,
		MediaType:   media.MediaType,
	}

	primaryOutcome := c.runTarget(ctx, c.primary, media)
	event.Outcomes = append(event.Outcomes, primaryOutcome)

	if !primaryOutcome.Success {
		// Without confirmed removal on the authoritative server nothing
		// else may be touched: downstream systems exist only to stop that
		// content from reappearing.
		for _, target := range models.TargetOrder[1:] {
			event.Outcomes = append(event.Outcomes, models.TargetOutcome{
				Target:  target,
				Skipped: true,
				Message: "primary deletion failed",
			})
		}
		event.OverallStatus = models.EventFailed
		return event
	}

	// Secondaries are independent; one failing or timing out never blocks
	// the others.
	secondaryTargets := models.TargetOrder[1:]
	outcomes := make([]models.TargetOutcome, len(secondaryTargets))
	var wg sync.WaitGroup
	for i, target := range secondaryTargets {
		adapter, configured := c.secondaries[target]
		if !configured {
			outcomes[i] = models.TargetOutcome{
				Target:  target,
				Skipped: true,
				Message: "integration not configured",
			}
			continue
		}
		wg.Add(1)
		go func(i int, adapter TargetAdapter) {
			defer wg.Done()
			outcomes[i] = c.runTarget(ctx, adapter, media)
		}(i, adapter)
	}
	wg.Wait()
	event.Outcomes = append(event.Outcomes, outcomes...)

	// Close the orphaned-record gap regardless of secondary outcomes: a
	// deleted-upstream item must not resurface as a future candidate.
	if err := c.store.RetireCandidate(media.ID); err != nil {
		c.logger.WithError(err).WithField("candidate_id", media.ID).Error("Failed to retire catalog row")
	}

	event.OverallStatus = models.EventCompleted
	for _, outcome := range outcomes {
		if outcome.Attempted && !outcome.Success {
			event.OverallStatus = models.EventPartial
			break
		}
	}

	return event
}

// simulateCascade synthesizes the outcomes of a dry run. No adapter, session
// cache, or catalog mutation is touched here; dry run is observably
// side-effect-free.
func (c *CascadeController) simulateCascade(media *models.Media) *models.DeletionEvent {
	event := &models.DeletionEvent{
		CandidateID: media.ID,
		Title:       media.Title,
		MediaType:   media.MediaType,
		DryRun:      true,
		CanUndo:     true,
	}

	for _, target := range models.TargetOrder {
		adapter := c.adapterFor(target)
		if adapter == nil {
			event.Outcomes = append(event.Outcomes, models.TargetOutcome{
				Target:  target,
				Skipped: true,
				Message: "integration not configured",
			})
			continue
		}
		if _, ok := adapter.Key(media); !ok {
			event.Outcomes = append(event.Outcomes, models.TargetOutcome{
				Target:  target,
				Skipped: true,
				Message: "no resolvable key for target",
			})
			continue
		}
		event.Outcomes = append(event.Outcomes, models.TargetOutcome{
			Target:    target,
			Attempted: true,
			Success:   true,
			Message:   "would delete",
		})
	}

	event.OverallStatus = models.EventCompleted
	return event
}

// runTarget performs locate+delete on one target with the per-call timeout.
// "Not present" counts as success so re-applying a deletion stays a no-op.
func (c *CascadeController) runTarget(ctx context.Context, adapter TargetAdapter, media *models.Media) models.TargetOutcome {
	outcome := models.TargetOutcome{Target: adapter.Target()}

	key, ok := adapter.Key(media)
	if !ok {
		outcome.Skipped = true
		outcome.Message = "no resolvable key for target"
		return outcome
	}

	outcome.Attempted = true

	callCtx, cancel := context.WithTimeout(ctx, c.targetTimeout)
	defer cancel()

	handle, err := adapter.Locate(callCtx, key)
	if errors.Is(err, models.ErrNotFound) {
		outcome.Success = true
		outcome.Message = "not present on target"
		return outcome
	}
	if err != nil {
		outcome.Error = classifyTargetError(err)
		c.recordTargetFailure(adapter.Target(), media, err)
		return outcome
	}

	message, err := adapter.Delete(callCtx, handle)
	if errors.Is(err, models.ErrNotFound) {
		outcome.Success = true
		outcome.Message = "not present on target"
		return outcome
	}
	if err != nil {
		outcome.Error = classifyTargetError(err)
		c.recordTargetFailure(adapter.Target(), media, err)
		return outcome
	}

	now := time.Now()
	outcome.Success = true
	outcome.Deleted = true
	outcome.DeletedAt = &now
	outcome.Message = message
	return outcome
}

// finishCandidate appends the audit event and updates progress. An append
// failure is escalated distinctly from any target outcome error.
func (c *CascadeController) finishCandidate(event *models.DeletionEvent, sizeBytes int64) candidateResult {
	result := candidateResult{event: event, sizeBytes: sizeBytes}

	if err := c.recorder.AppendEvent(event); err != nil {
		c.logger.WithError(err).WithField("candidate_id", event.CandidateID).Error("Failed to record deletion event")
		result.auditFailed = true
		c.progress.Advance(models.EventFailed)
		metrics.DeletionEvents.WithLabelValues("audit_failed").Inc()
		return result
	}

	c.progress.Advance(event.OverallStatus)
	metrics.DeletionEvents.WithLabelValues(string(event.OverallStatus)).Inc()
	return result
}

func (c *CascadeController) adapterFor(target models.Target) TargetAdapter {
	if target == c.primary.Target() {
		return c.primary
	}
	return c.secondaries[target]
}

func (c *CascadeController) recordTargetFailure(target models.Target, media *models.Media, err error) {
	metrics.TargetFailures.WithLabelValues(string(target)).Inc()
	c.logger.WithError(err).WithFields(logrus.Fields{
		"target":       target,
		"candidate_id": media.ID,
		"title":        media.Title,
	}).Warn("Target deletion failed")
}

// failedOutcomes builds the outcome list for a candidate that never reached
// the primary target: nothing attempted, secondaries skipped.
func failedOutcomes(primary models.Target, reason string) []models.TargetOutcome {
	outcomes := []models.TargetOutcome{{Target: primary, Error: reason}}
	for _, target := range models.TargetOrder[1:] {
		outcomes = append(outcomes, models.TargetOutcome{
			Target:  target,
			Skipped: true,
			Message: "primary identifier unusable",
		})
	}
	return outcomes
}

// validRatingKey rejects free-text fallbacks written by buggy importers;
// Plex rating keys are plain integers.
func validRatingKey(key string) bool {
	_, err := strconv.ParseUint(key, 10, 64)
	return err == nil
}

// classifyTargetError maps adapter errors onto the audit error taxonomy.
func classifyTargetError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, models.ErrAuthFailure):
		return models.ErrAuthFailure.Error()
	default:
		return err.Error()
	}
}

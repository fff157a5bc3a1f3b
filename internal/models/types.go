package models

import "errors"

// MediaType represents the type of media (movie or tv show)
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Status represents the lifecycle state of a catalog item
type Status string

const (
	StatusActive  Status = "active"
	StatusRetired Status = "retired" // tombstoned after confirmed upstream deletion
)

// Target identifies one external system that may hold a reference to a media item
type Target string

const (
	TargetPlex      Target = "plex"      // primary, authoritative
	TargetSonarr    Target = "sonarr"    // download automation (tv)
	TargetRadarr    Target = "radarr"    // download automation (movies)
	TargetOverseerr Target = "overseerr" // request tracker
)

// TargetOrder is the canonical outcome ordering: primary first, then secondaries.
var TargetOrder = []Target{TargetPlex, TargetSonarr, TargetRadarr, TargetOverseerr}

// EventStatus represents the aggregate result of one cascade
type EventStatus string

const (
	EventCompleted EventStatus = "completed"
	EventPartial   EventStatus = "partial"
	EventFailed    EventStatus = "failed"
)

// BatchStatus represents the state of a batch as seen by polling clients
type BatchStatus string

const (
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchError      BatchStatus = "error"
)

// Sentinel errors shared between the orchestrator, the store and the target clients.
var (
	// ErrNotFound means the item is absent on the target; deletions treat it as a no-op success.
	ErrNotFound = errors.New("not found")
	// ErrInvalidIdentifier means the primary external key is not a well-formed rating key.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrAuthFailure means the target rejected the cached credentials.
	ErrAuthFailure = errors.New("authentication failed")
	// ErrAuditWriteFailed means a deletion happened but could not be recorded.
	ErrAuditWriteFailed = errors.New("audit write failed")
	// ErrCascadeInProgress means another cascade already holds this candidate id.
	ErrCascadeInProgress = errors.New("cascade already in progress")
)

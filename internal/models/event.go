package models

import "time"

// TargetOutcome records what happened on one external system during a cascade.
// The Deleted flag and its timestamp are kept per target so operators can
// audit exactly when each system was touched, not just whether the batch
// succeeded. Immutable once embedded in a DeletionEvent.
type TargetOutcome struct {
	Target    Target
	Attempted bool
	Success   bool
	Skipped   bool
	Deleted   bool
	DeletedAt *time.Time
	Error     string
	Message   string
}

// DeletionEvent is the append-only audit record for one candidate's cascade.
// Exactly one outcome per target, in TargetOrder.
type DeletionEvent struct {
	ID          uint64 `boltholdKey:"ID"`
	CandidateID string `boltholdIndex:"CandidateID"`
	Title       string
	MediaType   MediaType
	DryRun      bool

	Outcomes      []TargetOutcome
	OverallStatus EventStatus
	CanUndo       bool

	CreatedAt time.Time
}

// Outcome returns the recorded outcome for a target, or nil if absent.
func (e *DeletionEvent) Outcome(target Target) *TargetOutcome {
	for i := range e.Outcomes {
		if e.Outcomes[i].Target == target {
			return &e.Outcomes[i]
		}
	}
	return nil
}

// ActivityLog is the one-per-batch summary row of a cascade run.
type ActivityLog struct {
	ID         uint64 `boltholdKey:"ID"`
	Action     string
	DryRun     bool
	Total      int
	Deleted    int
	Partial    int
	Failed     int
	Skipped    int
	SizeBytes  int64
	Status     BatchStatus
	DurationMs int64
	CreatedAt  time.Time
}

// BatchResult aggregates the per-candidate events of one cascade run.
// Deleted counts only fully completed cascades; partial cascades are
// reported on their own and never double-counted.
type BatchResult struct {
	TotalCandidates int              `json:"total_candidates"`
	Deleted         int              `json:"deleted"`
	Partial         int              `json:"partial"`
	Failed          int              `json:"failed"`
	Skipped         int              `json:"skipped"`
	TotalSizeBytes  int64            `json:"total_size_bytes"`
	Events          []*DeletionEvent `json:"events"`
}

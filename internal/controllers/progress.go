package controllers

import (
	"sync"

	"github.com/amaumene/purgarr/internal/models"
)

// ProgressSnapshot is the polling contract exposed to UIs.
type ProgressSnapshot struct {
	Current          int                `json:"current"`
	Total            int                `json:"total"`
	Deleted          int                `json:"deleted"`
	Failed           int                `json:"failed"`
	CurrentItemTitle string             `json:"current_item_title,omitempty"`
	Status           models.BatchStatus `json:"status"`
	Message          string             `json:"message,omitempty"`
}

// Progress tracks the state of the running batch for polling clients.
// Counters are updated under one mutex since candidates complete on
// separate worker goroutines.
type Progress struct {
	mu sync.Mutex

	current      int
	total        int
	deleted      int
	failed       int
	currentTitle string
	status       models.BatchStatus
	message      string
}

// NewProgress creates an idle progress tracker
func NewProgress() *Progress {
	return &Progress{status: models.BatchCompleted}
}

// Begin resets the tracker for a new batch
func (p *Progress) Begin(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = 0
	p.total = total
	p.deleted = 0
	p.failed = 0
	p.currentTitle = ""
	p.status = models.BatchProcessing
	p.message = ""
}

// SetCurrentItem records the title being processed
func (p *Progress) SetCurrentItem(title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentTitle = title
}

// Advance marks one candidate as finished with the given event status
func (p *Progress) Advance(status models.EventStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
	switch status {
	case models.EventCompleted:
		p.deleted++
	case models.EventFailed:
		p.failed++
	}
}

// Skip marks one candidate as skipped without touching the outcome counters
func (p *Progress) Skip() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
}

// Finish moves the tracker to its terminal completed state
func (p *Progress) Finish(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentTitle = ""
	p.status = models.BatchCompleted
	p.message = message
}

// Fail moves the tracker to its terminal error state
func (p *Progress) Fail(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentTitle = ""
	p.status = models.BatchError
	p.message = message
}

// Snapshot returns a copy safe to serialize
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ProgressSnapshot{
		Current:          p.current,
		Total:            p.total,
		Deleted:          p.deleted,
		Failed:           p.failed,
		CurrentItemTitle: p.currentTitle,
		Status:           p.status,
		Message:          p.message,
	}
}

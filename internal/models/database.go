package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Database wraps the bolthold store
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// Candidate operations

// CreateMedia creates a new catalog item
func (db *Database) CreateMedia(media *Media) error {
	if media.Status == "" {
		media.Status = StatusActive
	}
	media.CreatedAt = time.Now()
	media.UpdatedAt = time.Now()
	return db.store.Insert(media.ID, media)
}

// UpdateMedia updates an existing catalog item
func (db *Database) UpdateMedia(media *Media) error {
	media.UpdatedAt = time.Now()
	return db.store.Update(media.ID, media)
}

// GetCandidateByID resolves a deletion candidate by catalog id.
// Returns ErrNotFound when the id is unknown.
func (db *Database) GetCandidateByID(id string) (*Media, error) {
	var media Media
	err := db.store.Get(id, &media)
	if errors.Is(err, bolthold.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &media, nil
}

// GetActiveCandidates retrieves all catalog items that have not been retired
func (db *Database) GetActiveCandidates() ([]*Media, error) {
	var medias []*Media
	err := db.store.Find(&medias, bolthold.Where("Status").Eq(StatusActive))
	return medias, err
}

// GetAllMedias retrieves all catalog items
func (db *Database) GetAllMedias() ([]*Media, error) {
	var medias []*Media
	err := db.store.Find(&medias, nil)
	return medias, err
}

// RetireCandidate tombstones a catalog item after its upstream deletion was
// confirmed. The row is kept so a concurrent re-sync cannot resurface the
// item as a future candidate.
func (db *Database) RetireCandidate(id string) error {
	media, err := db.GetCandidateByID(id)
	if err != nil {
		return err
	}
	now := time.Now()
	media.Status = StatusRetired
	media.RetiredAt = &now
	media.UpdatedAt = now
	return db.store.Update(media.ID, media)
}

// Deletion event operations (append-only)

// AppendDeletionEvent stores one immutable deletion event
func (db *Database) AppendDeletionEvent(event *DeletionEvent) error {
	event.CreatedAt = time.Now()
	return db.store.Insert(bolthold.NextSequence(), event)
}

// GetDeletionEvents retrieves the most recent deletion events, newest first
func (db *Database) GetDeletionEvents(limit int) ([]*DeletionEvent, error) {
	var events []*DeletionEvent
	err := db.store.Find(&events, nil)
	if err != nil {
		return nil, err
	}
	// bolthold returns sequence order; reverse for newest first
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// GetDeletionEventsByCandidate retrieves all events recorded for one candidate
func (db *Database) GetDeletionEventsByCandidate(candidateID string) ([]*DeletionEvent, error) {
	var events []*DeletionEvent
	err := db.store.Find(&events, bolthold.Where("CandidateID").Eq(candidateID))
	return events, err
}

// Activity log operations

// AppendActivityLog stores one batch summary row
func (db *Database) AppendActivityLog(entry *ActivityLog) error {
	entry.CreatedAt = time.Now()
	return db.store.Insert(bolthold.NextSequence(), entry)
}

// GetActivityLog retrieves the most recent batch summaries, newest first
func (db *Database) GetActivityLog(limit int) ([]*ActivityLog, error) {
	var entries []*ActivityLog
	err := db.store.Find(&entries, nil)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

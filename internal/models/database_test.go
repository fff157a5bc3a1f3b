package models

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func testDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateAndResolveCandidate(t *testing.T) {
	db := testDatabase(t)

	media := &Media{
		ID:        "m1",
		Title:     "Heat",
		MediaType: MediaTypeMovie,
		PlexKey:   "101",
		TMDBID:    949,
	}
	if err := db.CreateMedia(media); err != nil {
		t.Fatalf("CreateMedia failed: %v", err)
	}

	got, err := db.GetCandidateByID("m1")
	if err != nil {
		t.Fatalf("GetCandidateByID failed: %v", err)
	}
	if got.Title != "Heat" || got.Status != StatusActive {
		t.Errorf("Unexpected candidate: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set on insert")
	}
}

func TestGetCandidateByIDUnknown(t *testing.T) {
	db := testDatabase(t)

	_, err := db.GetCandidateByID("ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestRetireCandidateTombstones(t *testing.T) {
	db := testDatabase(t)

	if err := db.CreateMedia(&Media{ID: "m1", Title: "Heat", MediaType: MediaTypeMovie}); err != nil {
		t.Fatalf("CreateMedia failed: %v", err)
	}
	if err := db.CreateMedia(&Media{ID: "m2", Title: "Alien", MediaType: MediaTypeMovie}); err != nil {
		t.Fatalf("CreateMedia failed: %v", err)
	}

	if err := db.RetireCandidate("m1"); err != nil {
		t.Fatalf("RetireCandidate failed: %v", err)
	}

	// The row survives as a tombstone
	retired, err := db.GetCandidateByID("m1")
	if err != nil {
		t.Fatalf("Retired row must remain resolvable: %v", err)
	}
	if retired.Status != StatusRetired || retired.RetiredAt == nil {
		t.Errorf("Expected tombstone, got %+v", retired)
	}

	// But it no longer appears among active candidates
	active, err := db.GetActiveCandidates()
	if err != nil {
		t.Fatalf("GetActiveCandidates failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != "m2" {
		t.Errorf("Expected only m2 active, got %+v", active)
	}

	all, err := db.GetAllMedias()
	if err != nil {
		t.Fatalf("GetAllMedias failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 rows total, got %d", len(all))
	}
}

func TestRetireUnknownCandidate(t *testing.T) {
	db := testDatabase(t)

	if err := db.RetireCandidate("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeletionEventsNewestFirst(t *testing.T) {
	db := testDatabase(t)

	for i, id := range []string{"a", "b", "c"} {
		event := &DeletionEvent{
			CandidateID:   id,
			Title:         "Item " + id,
			OverallStatus: EventCompleted,
		}
		if err := db.AppendDeletionEvent(event); err != nil {
			t.Fatalf("AppendDeletionEvent %d failed: %v", i, err)
		}
	}

	events, err := db.GetDeletionEvents(2)
	if err != nil {
		t.Fatalf("GetDeletionEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected limit of 2, got %d", len(events))
	}
	if events[0].CandidateID != "c" || events[1].CandidateID != "b" {
		t.Errorf("Expected newest first, got %s then %s", events[0].CandidateID, events[1].CandidateID)
	}
}

func TestDeletionEventsByCandidate(t *testing.T) {
	db := testDatabase(t)

	for _, id := range []string{"m1", "m2", "m1"} {
		if err := db.AppendDeletionEvent(&DeletionEvent{CandidateID: id}); err != nil {
			t.Fatalf("AppendDeletionEvent failed: %v", err)
		}
	}

	events, err := db.GetDeletionEventsByCandidate("m1")
	if err != nil {
		t.Fatalf("GetDeletionEventsByCandidate failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("Expected 2 events for m1, got %d", len(events))
	}
}

func TestDeletionEventOutcomesRoundTrip(t *testing.T) {
	db := testDatabase(t)

	deletedAt := time.Now().Truncate(time.Second)
	event := &DeletionEvent{
		CandidateID:   "m1",
		Title:         "Heat",
		MediaType:     MediaTypeMovie,
		OverallStatus: EventPartial,
		Outcomes: []TargetOutcome{
			{Target: TargetPlex, Attempted: true, Success: true, Deleted: true, DeletedAt: &deletedAt},
			{Target: TargetSonarr, Skipped: true, Message: "no resolvable key for target"},
			{Target: TargetRadarr, Attempted: true, Error: "timeout"},
			{Target: TargetOverseerr, Attempted: true, Success: true},
		},
	}
	if err := db.AppendDeletionEvent(event); err != nil {
		t.Fatalf("AppendDeletionEvent failed: %v", err)
	}

	events, err := db.GetDeletionEvents(0)
	if err != nil {
		t.Fatalf("GetDeletionEvents failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}

	got := events[0]
	plexOutcome := got.Outcome(TargetPlex)
	if plexOutcome == nil || !plexOutcome.Deleted || plexOutcome.DeletedAt == nil {
		t.Errorf("Primary outcome lost in storage: %+v", plexOutcome)
	}
	if radarrOutcome := got.Outcome(TargetRadarr); radarrOutcome.Error != "timeout" {
		t.Errorf("Expected timeout error preserved, got %+v", radarrOutcome)
	}
}

func TestActivityLogNewestFirst(t *testing.T) {
	db := testDatabase(t)

	for i := 1; i <= 3; i++ {
		entry := &ActivityLog{
			Action:  "cascade_deletion",
			Total:   i,
			Deleted: i,
			Status:  BatchCompleted,
		}
		if err := db.AppendActivityLog(entry); err != nil {
			t.Fatalf("AppendActivityLog failed: %v", err)
		}
	}

	entries, err := db.GetActivityLog(2)
	if err != nil {
		t.Fatalf("GetActivityLog failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected limit of 2, got %d", len(entries))
	}
	if entries[0].Total != 3 {
		t.Errorf("Expected newest first, got total %d", entries[0].Total)
	}
}

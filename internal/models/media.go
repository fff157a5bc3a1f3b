package models

import "time"

// Media represents a catalog item that can be selected for deletion.
// Rows are created and refreshed by the ingestion pipeline; the cascade
// orchestrator only reads them and tombstones them after a confirmed
// deletion on the primary target.
type Media struct {
	ID    string `boltholdKey:"ID"`
	Title string

	MediaType MediaType // "movie" or "tv"
	Year      int

	// Cross-reference identifiers
	PlexKey string `boltholdIndex:"PlexKey"` // Plex rating key, must be numeric
	TVDBID  int64  // Sonarr series lookup
	TMDBID  int64  // Radarr/Overseerr lookup

	FileSizeBytes int64

	// Watch statistics used by retention scans
	AddedAt      time.Time
	LastViewedAt *time.Time
	ViewCount    int
	Rating       float64
	Genres       []string

	Status    Status `boltholdIndex:"Status"`
	RetiredAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasKey reports whether the item carries a resolvable identifier for a target.
func (m *Media) HasKey(target Target) bool {
	switch target {
	case TargetPlex:
		return m.PlexKey != ""
	case TargetSonarr:
		return m.MediaType == MediaTypeTV && m.TVDBID != 0
	case TargetRadarr:
		return m.MediaType == MediaTypeMovie && m.TMDBID != 0
	case TargetOverseerr:
		return m.TMDBID != 0
	}
	return false
}

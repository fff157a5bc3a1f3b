package overseerr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amaumene/purgarr/internal/config"
	"github.com/amaumene/purgarr/internal/models"
	"github.com/sirupsen/logrus"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	client, err := NewClient(&config.Config{
		OverseerrURL:    server.URL,
		OverseerrAPIKey: "test-key",
	}, logger)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestKeyCarriesMediaType(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {})

	key, ok := client.Key(&models.Media{MediaType: models.MediaTypeMovie, TMDBID: 949})
	if !ok || key != "movie:949" {
		t.Errorf("Expected movie:949, got %q (%v)", key, ok)
	}
	key, ok = client.Key(&models.Media{MediaType: models.MediaTypeTV, TMDBID: 1438})
	if !ok || key != "tv:1438" {
		t.Errorf("Expected tv:1438, got %q (%v)", key, ok)
	}
	if _, ok := client.Key(&models.Media{MediaType: models.MediaTypeMovie}); ok {
		t.Error("Missing TMDB id must not resolve")
	}
}

func TestSplitKey(t *testing.T) {
	tests := []struct {
		key       string
		mediaType string
		tmdbID    string
		ok        bool
	}{
		{"movie:949", "movie", "949", true},
		{"tv:1438", "tv", "1438", true},
		{"movie:", "", "", false},
		{":949", "", "", false},
		{"949", "", "", false},
	}
	for _, tt := range tests {
		mediaType, tmdbID, ok := splitKey(tt.key)
		if ok != tt.ok {
			t.Errorf("splitKey(%q) ok = %v, want %v", tt.key, ok, tt.ok)
			continue
		}
		if ok && (mediaType != tt.mediaType || tmdbID != tt.tmdbID) {
			t.Errorf("splitKey(%q) = %q, %q", tt.key, mediaType, tmdbID)
		}
	}
}

func TestLocateResolvesMediaID(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("tmdbId") != "949" || query.Get("type") != "movie" {
			t.Errorf("Unexpected query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"id": 7, "requests": [{"id": 1}]}`))
	})

	handle, err := client.Locate(context.Background(), "movie:949")
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if handle != "7" {
		t.Errorf("Expected internal id 7, got %q", handle)
	}
}

func TestLocateUnknownTitle(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 0}`))
	})

	_, err := client.Locate(context.Background(), "movie:949")
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeleteClearsRequests(t *testing.T) {
	var gotPath string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Expected DELETE, got %s", r.Method)
		}
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	if _, err := client.Delete(context.Background(), "7"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if gotPath != "/api/v1/media/7" {
		t.Errorf("Unexpected path: %s", gotPath)
	}
}

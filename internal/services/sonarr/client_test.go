package sonarr

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
		SonarrURL:    server.URL,
		SonarrAPIKey: "test-key",
	}, logger)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestKey(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {})

	if _, ok := client.Key(&models.Media{MediaType: models.MediaTypeMovie, TVDBID: 123}); ok {
		t.Error("Movies must not resolve to a Sonarr key")
	}
	if _, ok := client.Key(&models.Media{MediaType: models.MediaTypeTV}); ok {
		t.Error("Series without TVDB id must not resolve")
	}
	key, ok := client.Key(&models.Media{MediaType: models.MediaTypeTV, TVDBID: 79126})
	if !ok || key != "79126" {
		t.Errorf("Expected key 79126, got %q (%v)", key, ok)
	}
}

func TestLocateFound(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("tvdbId") != "79126" {
			t.Errorf("Unexpected tvdbId query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"id": 42, "title": "The Wire"}]`))
	})

	handle, err := client.Locate(context.Background(), "79126")
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if handle != "42" {
		t.Errorf("Expected internal id 42, got %q", handle)
	}
}

func TestLocateNotTracked(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, err := client.Locate(context.Background(), "79126")
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for untracked series, got %v", err)
	}
}

func TestLocateAuthFailure(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Locate(context.Background(), "79126")
	if !errors.Is(err, models.ErrAuthFailure) {
		t.Fatalf("Expected ErrAuthFailure, got %v", err)
	}
}

func TestDeleteRemovesFiles(t *testing.T) {
	var gotPath, gotQuery string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Expected DELETE, got %s", r.Method)
		}
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	})

	if _, err := client.Delete(context.Background(), "42"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if gotPath != "/api/v3/series/42" {
		t.Errorf("Unexpected path: %s", gotPath)
	}
	if gotQuery != "deleteFiles=true" {
		t.Errorf("Files must be deleted together with the series, query: %s", gotQuery)
	}
}

func TestDeleteGone(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Delete(context.Background(), "42")
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for already-removed series, got %v", err)
	}
}

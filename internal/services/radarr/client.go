package radarr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/amaumene/purgarr/internal/config"
	"github.com/amaumene/purgarr/internal/models"
	"github.com/sirupsen/logrus"
)

// Client handles communication with the Radarr API, the download-automation
// target for movies.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new Radarr API client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if !cfg.RadarrEnabled() {
		return nil, fmt.Errorf("Radarr URL and API key are required")
	}

	return &Client{
		baseURL:    cfg.RadarrURL,
		apiKey:     cfg.RadarrAPIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}, nil
}

// Target identifies this client as the movie download-automation target
func (c *Client) Target() models.Target {
	return models.TargetRadarr
}

// Key returns the TMDB id for movie candidates
func (c *Client) Key(m *models.Media) (string, bool) {
	if m.MediaType != models.MediaTypeMovie || m.TMDBID == 0 {
		return "", false
	}
	return strconv.FormatInt(m.TMDBID, 10), true
}

type movie struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Locate resolves a TMDB id to Radarr's internal movie id.
// Returns models.ErrNotFound when Radarr does not track the movie.
func (c *Client) Locate(ctx context.Context, key string) (string, error) {
	endpoint := c.baseURL + "/api/v3/movie?tmdbId=" + url.QueryEscape(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("radarr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", models.ErrAuthFailure
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("radarr lookup failed with status %d", resp.StatusCode)
	}

	var matches []movie
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		return "", fmt.Errorf("failed to decode movie response: %w", err)
	}
	if len(matches) == 0 {
		return "", models.ErrNotFound
	}

	return strconv.FormatInt(matches[0].ID, 10), nil
}

// Delete removes a movie from Radarr together with its files. The movie is
// not added to the import exclusion list so it can be requested again later.
func (c *Client) Delete(ctx context.Context, handle string) (string, error) {
	endpoint := c.baseURL + "/api/v3/movie/" + handle + "?deleteFiles=true&addImportExclusion=false"
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("radarr request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		c.logger.WithField("movie_id", handle).Debug("Removed movie from Radarr")
		return "removed movie and files from Radarr", nil
	case http.StatusNotFound:
		return "", models.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", models.ErrAuthFailure
	default:
		return "", fmt.Errorf("radarr delete failed with status %d", resp.StatusCode)
	}
}

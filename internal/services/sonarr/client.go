package sonarr

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

// Client handles communication with the Sonarr API. Removing a series here
// is what stops Sonarr from re-acquiring content deleted from the library.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new Sonarr API client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if !cfg.SonarrEnabled() {
		return nil, fmt.Errorf("Sonarr URL and API key are required")
	}

	return &Client{
		baseURL:    cfg.SonarrURL,
		apiKey:     cfg.SonarrAPIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}, nil
}

// Target identifies this client as the tv download-automation target
func (c *Client) Target() models.Target {
	return models.TargetSonarr
}

// Key returns the TVDB id for series candidates
func (c *Client) Key(m *models.Media) (string, bool) {
	if m.MediaType != models.MediaTypeTV || m.TVDBID == 0 {
		return "", false
	}
	return strconv.FormatInt(m.TVDBID, 10), true
}

type series struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Locate resolves a TVDB id to Sonarr's internal series id.
// Returns models.ErrNotFound when Sonarr does not track the series.
func (c *Client) Locate(ctx context.Context, key string) (string, error) {
	endpoint := c.baseURL + "/api/v3/series?tvdbId=" + url.QueryEscape(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sonarr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", models.ErrAuthFailure
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sonarr lookup failed with status %d", resp.StatusCode)
	}

	var matches []series
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		return "", fmt.Errorf("failed to decode series response: %w", err)
	}
	if len(matches) == 0 {
		return "", models.ErrNotFound
	}

	return strconv.FormatInt(matches[0].ID, 10), nil
}

// Delete removes a series from Sonarr together with its files so the
// content cannot be re-acquired automatically.
func (c *Client) Delete(ctx context.Context, handle string) (string, error) {
	endpoint := c.baseURL + "/api/v3/series/" + handle + "?deleteFiles=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sonarr request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		c.logger.WithField("series_id", handle).Debug("Removed series from Sonarr")
		return "removed series and files from Sonarr", nil
	case http.StatusNotFound:
		return "", models.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", models.ErrAuthFailure
	default:
		return "", fmt.Errorf("sonarr delete failed with status %d", resp.StatusCode)
	}
}

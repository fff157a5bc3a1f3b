package overseerr

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

// Client handles communication with the Overseerr API. Clearing the media
// record removes its request history so users can re-request the title.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new Overseerr API client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if !cfg.OverseerrEnabled() {
		return nil, fmt.Errorf("Overseerr URL and API key are required")
	}

	return &Client{
		baseURL:    cfg.OverseerrURL,
		apiKey:     cfg.OverseerrAPIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}, nil
}

// Target identifies this client as the request-tracker target
func (c *Client) Target() models.Target {
	return models.TargetOverseerr
}

// Key returns the TMDB id; Overseerr tracks both movies and series by it
func (c *Client) Key(m *models.Media) (string, bool) {
	if m.TMDBID == 0 {
		return "", false
	}
	mediaType := "movie"
	if m.MediaType == models.MediaTypeTV {
		mediaType = "tv"
	}
	return mediaType + ":" + strconv.FormatInt(m.TMDBID, 10), true
}

type mediaInfo struct {
	ID       int64 `json:"id"`
	Requests []struct {
		ID int64 `json:"id"`
	} `json:"requests"`
}

// Locate resolves a "type:tmdbId" key to Overseerr's internal media id.
// Returns models.ErrNotFound when Overseerr has no record of the title.
func (c *Client) Locate(ctx context.Context, key string) (string, error) {
	mediaType, tmdbID, ok := splitKey(key)
	if !ok {
		return "", fmt.Errorf("malformed overseerr key %q", key)
	}

	endpoint := fmt.Sprintf("%s/api/v1/media?tmdbId=%s&type=%s",
		c.baseURL, url.QueryEscape(tmdbID), url.QueryEscape(mediaType))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("overseerr request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", models.ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", models.ErrAuthFailure
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("overseerr lookup failed with status %d", resp.StatusCode)
	}

	var media mediaInfo
	if err := json.NewDecoder(resp.Body).Decode(&media); err != nil {
		return "", fmt.Errorf("failed to decode media response: %w", err)
	}
	if media.ID == 0 {
		return "", models.ErrNotFound
	}

	return strconv.FormatInt(media.ID, 10), nil
}

// Delete removes the media record and with it every associated request.
func (c *Client) Delete(ctx context.Context, handle string) (string, error) {
	endpoint := c.baseURL + "/api/v1/media/" + handle
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("overseerr request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		c.logger.WithField("media_id", handle).Debug("Removed media record from Overseerr")
		return "removed request records from Overseerr", nil
	case http.StatusNotFound:
		return "", models.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", models.ErrAuthFailure
	default:
		return "", fmt.Errorf("overseerr delete failed with status %d", resp.StatusCode)
	}
}

func splitKey(key string) (mediaType, tmdbID string, ok bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i], key[i+1:], i > 0 && i < len(key)-1
		}
	}
	return "", "", false
}

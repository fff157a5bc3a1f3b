package plex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/amaumene/purgarr/internal/config"
	"github.com/amaumene/purgarr/internal/models"
	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// Client handles communication with the Plex media server, the primary
// deletion target.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	sessions   *SessionCache
	logger     *logrus.Logger
}

// NewClient creates a new Plex API client
func NewClient(cfg *config.Config, sessions *SessionCache, logger *logrus.Logger) (*Client, error) {
	if cfg.PlexURL == "" || cfg.PlexToken == "" {
		return nil, fmt.Errorf("Plex URL and token are required")
	}

	return &Client{
		baseURL:    cfg.PlexURL,
		token:      cfg.PlexToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		sessions:   sessions,
		logger:     logger,
	}, nil
}

// Target identifies this client as the primary target
func (c *Client) Target() models.Target {
	return models.TargetPlex
}

// Key returns the Plex rating key for a candidate
func (c *Client) Key(m *models.Media) (string, bool) {
	if m.PlexKey == "" {
		return "", false
	}
	return m.PlexKey, true
}

// Locate checks that an item with the given rating key exists in the library.
// Returns models.ErrNotFound when the item is already absent.
func (c *Client) Locate(ctx context.Context, key string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/library/metadata/"+key)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", models.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", fmt.Errorf("plex metadata request failed with status %d", resp.StatusCode)
	}

	return key, nil
}

// Delete removes an item from the Plex library. Plex deletes the underlying
// media files itself when "Allow media deletion" is enabled on the server.
func (c *Client) Delete(ctx context.Context, handle string) (string, error) {
	resp, err := c.do(ctx, http.MethodDelete, "/library/metadata/"+handle)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", models.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", fmt.Errorf("plex delete failed with status %d", resp.StatusCode)
	}

	c.logger.WithField("rating_key", handle).Debug("Deleted item from Plex library")
	return "deleted from Plex library", nil
}

// do performs an authenticated request against the cached session. A 401
// evicts the session and the request is retried once through a fresh
// handshake; a second 401 surfaces as a normal auth failure.
func (c *Client) do(ctx context.Context, method, path string) (*http.Response, error) {
	var resp *http.Response

	attempt := func() error {
		session, err := c.sessions.Get(ctx, c.baseURL, c.handshake)
		if err != nil {
			if errors.Is(err, models.ErrAuthFailure) {
				return err
			}
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, method, session.BaseURL+path, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("X-Plex-Token", session.Token)
		req.Header.Set("Accept", "application/json")

		r, err := c.httpClient.Do(req)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("plex request failed: %w", err))
		}

		if r.StatusCode == http.StatusUnauthorized {
			r.Body.Close()
			c.sessions.Evict(c.baseURL)
			c.logger.Warn("Plex session rejected, re-authenticating")
			return models.ErrAuthFailure
		}

		resp = r
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(200*time.Millisecond), 1), ctx)
	if err := backoff.Retry(attempt, policy); err != nil {
		return nil, err
	}

	return resp, nil
}

// identityResponse is the JSON shape of GET /identity
type identityResponse struct {
	MediaContainer struct {
		MachineIdentifier string `json:"machineIdentifier"`
	} `json:"MediaContainer"`
}

// handshake verifies the token against the server and resolves its identity
func (c *Client) handshake(ctx context.Context) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/identity", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity request: %w", err)
	}
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("plex handshake failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, models.ErrAuthFailure
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("plex handshake failed with status %d", resp.StatusCode)
	}

	var identity identityResponse
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}

	c.logger.WithField("machine_id", identity.MediaContainer.MachineIdentifier).Debug("Plex handshake completed")

	return &Session{
		BaseURL:   c.baseURL,
		Token:     c.token,
		MachineID: identity.MediaContainer.MachineIdentifier,
	}, nil
}

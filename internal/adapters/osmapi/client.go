// Package osmapi implements the changeset port against the OSM API 0.6.
package osmapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/treewarden/internal/core/changeset"
	"github.com/example/treewarden/internal/core/osmxml"
	"github.com/example/treewarden/internal/ports/secondary"
	"github.com/example/treewarden/internal/version"
)

// ErrNoToken is returned when a write is attempted without an access token.
var ErrNoToken = errors.New("no OSM access token configured")

// StatusError carries a non-2xx response verbatim.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Client performs authenticated changeset calls.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// NewClient creates a client for baseURL (without the /api/0.6 suffix).
func NewClient(baseURL, token string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// HTTPClient exposes the underlying client so tests can intercept it.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// CreateChangeset opens a changeset and returns the id assigned by the server.
func (c *Client) CreateChangeset(ctx context.Context, tags []changeset.Tag) (int64, error) {
	body, err := osmxml.EncodeChangesetCreate(tags)
	if err != nil {
		return 0, err
	}

	resp, err := c.do(ctx, http.MethodPut, "/api/0.6/changeset/create", body)
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseInt(strings.TrimSpace(resp), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("unexpected changeset id %q", resp)
	}
	c.logger.Infow("Changeset created", "changeset_id", id)
	return id, nil
}

// UploadChanges posts the payload as an osmChange document stamped with changesetID.
func (c *Client) UploadChanges(ctx context.Context, changesetID int64, payload *changeset.Payload) (string, error) {
	body, err := osmxml.EncodeUpload(payload, changesetID)
	if err != nil {
		return "", err
	}

	resp, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/0.6/changeset/%d/upload", changesetID), body)
	if err != nil {
		return "", err
	}
	c.logger.Infow("Changes uploaded", "changeset_id", changesetID, "nodes", payload.Len())
	return resp, nil
}

// CloseChangeset closes the changeset.
func (c *Client) CloseChangeset(ctx context.Context, changesetID int64) error {
	_, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/0.6/changeset/%d/close", changesetID), nil)
	if err != nil {
		return err
	}
	c.logger.Infow("Changeset closed", "changeset_id", changesetID)
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (string, error) {
	if c.token == "" {
		return "", ErrNoToken
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/xml")
	}

	c.logger.Debugw("OSM API request", "method", method, "path", path)
	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", &StatusError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return string(data), nil
}

var _ secondary.ChangesetAPI = (*Client)(nil)

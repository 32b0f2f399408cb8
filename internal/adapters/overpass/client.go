// Package overpass implements the geodata port against an Overpass API interpreter.
package overpass

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/example/treewarden/internal/core/bounds"
	"github.com/example/treewarden/internal/core/entity"
	"github.com/example/treewarden/internal/ports/secondary"
	"github.com/example/treewarden/internal/version"
)

// ErrResponseTooLarge is returned when a response body exceeds the configured limit.
var ErrResponseTooLarge = errors.New("overpass response exceeds size limit")

// StatusError carries a non-2xx response verbatim.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Client talks to one Overpass interpreter endpoint.
type Client struct {
	endpoint         string
	httpClient       *http.Client
	maxResponseBytes int64
	logger           *zap.SugaredLogger
}

// NewClient creates a client. timeout bounds every request; maxResponseBytes <= 0 disables the size guard.
func NewClient(endpoint string, timeout time.Duration, maxResponseBytes int64, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{
		endpoint:         endpoint,
		httpClient:       &http.Client{Timeout: timeout},
		maxResponseBytes: maxResponseBytes,
		logger:           logger,
	}
}

// HTTPClient exposes the underlying client so tests can intercept it.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// FetchTrees returns the tree nodes inside the query box.
func (c *Client) FetchTrees(ctx context.Context, q secondary.TreeQuery) ([]entity.Tree, error) {
	resp, err := c.run(ctx, TreeQuery(q.Bounds, q.Genera))
	if err != nil {
		return nil, err
	}

	trees := make([]entity.Tree, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		if el.Type != "node" || el.Lat == nil || el.Lon == nil {
			continue
		}
		trees = append(trees, entity.Tree{
			ID:        el.ID,
			Lat:       *el.Lat,
			Lon:       *el.Lon,
			Version:   el.Version,
			Timestamp: el.Timestamp,
			UID:       el.UID,
			User:      el.User,
			Tags:      cleanTags(el.Tags),
		})
	}
	c.logger.Debugw("Fetched trees", "count", len(trees), "genera", len(q.Genera))
	return trees, nil
}

// FetchOrchards returns orchard rings intersecting box. A multipolygon relation
// yields one orchard per outer member, all sharing the relation id.
func (c *Client) FetchOrchards(ctx context.Context, box bounds.Box) ([]entity.Orchard, error) {
	resp, err := c.run(ctx, OrchardQuery(box))
	if err != nil {
		return nil, err
	}

	var orchards []entity.Orchard
	for _, el := range resp.Elements {
		tags := cleanTags(el.Tags)
		switch el.Type {
		case "way":
			if ring := toRing(el.Geometry); ring != nil {
				orchards = append(orchards, entity.Orchard{ID: el.ID, Kind: entity.KindWay, Ring: ring, Tags: tags})
			}
		case "relation":
			for _, m := range el.Members {
				if m.Type != "way" || (m.Role != "outer" && m.Role != "") {
					continue
				}
				if ring := toRing(m.Geometry); ring != nil {
					orchards = append(orchards, entity.Orchard{ID: el.ID, Kind: entity.KindRelation, Ring: ring, Tags: tags})
				}
			}
		}
	}
	c.logger.Debugw("Fetched orchards", "count", len(orchards))
	return orchards, nil
}

func (c *Client) run(ctx context.Context, query string) (*response, error) {
	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", version.UserAgent())

	c.logger.Debugw("Running overpass query", "endpoint", c.endpoint, "query", query)
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query overpass: %w", err)
	}
	defer res.Body.Close()

	body, err := c.readBody(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &StatusError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode overpass response: %w", err)
	}
	return &out, nil
}

func (c *Client) readBody(r io.Reader) ([]byte, error) {
	if c.maxResponseBytes <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, c.maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read overpass response: %w", err)
	}
	if int64(len(body)) > c.maxResponseBytes {
		return nil, fmt.Errorf("%w (%d bytes)", ErrResponseTooLarge, c.maxResponseBytes)
	}
	return body, nil
}

// cleanTags drops blank values.
func cleanTags(in map[string]string) entity.Tags {
	out := make(entity.Tags, len(in))
	for k, v := range in {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// toRing converts a vertex list into a closed ring, or nil when it has fewer than three vertices.
func toRing(geom []latLon) orb.Ring {
	if len(geom) < 3 {
		return nil
	}
	ring := make(orb.Ring, 0, len(geom)+1)
	for _, p := range geom {
		ring = append(ring, orb.Point{p.Lon, p.Lat})
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}

var _ secondary.GeodataClient = (*Client)(nil)

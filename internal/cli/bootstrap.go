// Package cli provides CLI commands for the TreeWarden application.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/treewarden/internal/ctxutil"
	"github.com/example/treewarden/internal/logger"
	"github.com/example/treewarden/internal/ports/primary"
	"github.com/example/treewarden/internal/wire"
)

// errNoViewport is returned by commands that need trees before any `view`.
var errNoViewport = errors.New("no area loaded yet: run 'treewarden view <south,west,north,east>' first")

// NewContext creates a context.Background() carrying the configured OSM account.
// CLI commands should use this instead of context.Background() directly.
func NewContext() context.Context {
	cfg := wire.Config()
	return ctxutil.WithEditor(context.Background(), ctxutil.Editor{
		UserID:   cfg.UserID,
		Username: cfg.Username,
	})
}

// loadTrees fetches the stored viewport so the entity store holds the trees
// the command operates on. Every CLI invocation starts with an empty store.
func loadTrees(ctx context.Context) (*primary.FetchOutcome, error) {
	box, zoom, err := wire.Config().ViewportBounds()
	if err != nil {
		return nil, err
	}
	if box == nil {
		return nil, errNoViewport
	}

	fetch := wire.FetchService()
	outcome, err := fetch.Request(ctx, primary.FetchRequest{Bounds: *box, Zoom: zoom, Force: true})
	if err != nil {
		return nil, fmt.Errorf("failed to load trees: %w", err)
	}
	fetch.WaitIdle()

	logger.For(logger.ComponentCLI).Debugw("trees loaded",
		"bounds", box.String(),
		"trees", outcome.TreeCount,
		"filtered", outcome.Filtered)
	return outcome, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid tree id %q", s)
	}
	return id, nil
}

// parseTags turns key=value arguments into a change map. An empty value is kept.
func parseTags(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid tag %q (expected key=value)", arg)
		}
		out[k] = v
	}
	return out, nil
}

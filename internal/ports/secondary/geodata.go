// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"

	"github.com/example/treewarden/internal/core/bounds"
	"github.com/example/treewarden/internal/core/changeset"
	"github.com/example/treewarden/internal/core/entity"
)

// GeodataClient defines the secondary port for reading trees and orchards.
type GeodataClient interface {
	// FetchTrees returns every tree node inside the query box.
	FetchTrees(ctx context.Context, q TreeQuery) ([]entity.Tree, error)

	// FetchOrchards returns orchard areas intersecting the box.
	FetchOrchards(ctx context.Context, box bounds.Box) ([]entity.Orchard, error)
}

// TreeQuery describes one point fetch.
type TreeQuery struct {
	Bounds bounds.Box
	Genera []string // restrict to these genera; empty means all trees
}

// ChangesetAPI defines the secondary port for the upstream write API.
type ChangesetAPI interface {
	// CreateChangeset opens a changeset carrying the given metadata and returns its id.
	CreateChangeset(ctx context.Context, tags []changeset.Tag) (int64, error)

	// UploadChanges posts the payload into the changeset and returns the diff result body.
	UploadChanges(ctx context.Context, changesetID int64, payload *changeset.Payload) (string, error)

	// CloseChangeset closes the changeset.
	CloseChangeset(ctx context.Context, changesetID int64) error
}

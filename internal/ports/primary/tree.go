package primary

import (
	"context"

	"github.com/example/treewarden/internal/core/entity"
	"github.com/example/treewarden/internal/core/validation"
)

// TreeService defines the primary port for reading trees through their patches.
type TreeService interface {
	// ListTrees returns every loaded tree with its effective tags, ordered by id.
	ListTrees(ctx context.Context, filters TreeFilters) ([]*TreeView, error)

	// GetTree returns one tree with its effective tags and issues.
	GetTree(ctx context.Context, id int64) (*TreeView, error)

	// AddTree places a new tree locally and records its tags as a patch.
	AddTree(ctx context.Context, req AddTreeRequest) (*TreeView, error)

	// Status returns the entity store state.
	Status(ctx context.Context) (*FetchStatus, error)
}

// TreeView is a tree as the user sees it.
type TreeView struct {
	Tree      entity.Tree
	Effective map[string]string
	Name      string
	Patched   bool
	Pending   bool
	Issues    *validation.Result // nil unless requested
}

// TreeFilters narrows ListTrees.
type TreeFilters struct {
	OnlyPatched    bool
	OnlyWithIssues bool
	Genus          string
	WithIssues     bool // fill TreeView.Issues
}

// AddTreeRequest places a tree of a known type.
type AddTreeRequest struct {
	Lat  float64
	Lon  float64
	Type string // key of TreeTypes
	Tags map[string]string
}

package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/treewarden/internal/core/entity"
	"github.com/example/treewarden/internal/core/patch"
	"github.com/example/treewarden/internal/core/validation"
	"github.com/example/treewarden/internal/ports/primary"
)

// ErrTreeNotFound is returned for ids absent from the loaded trees.
var ErrTreeNotFound = errors.New("tree not found")

// TreeServiceImpl implements the TreeService interface.
type TreeServiceImpl struct {
	store   *EntityStore
	patches primary.PatchService
	engine  *validation.Engine
}

// NewTreeService creates a new TreeService with injected dependencies.
func NewTreeService(store *EntityStore, patches primary.PatchService, engine *validation.Engine) *TreeServiceImpl {
	return &TreeServiceImpl{
		store:   store,
		patches: patches,
		engine:  engine,
	}
}

// ListTrees returns every loaded tree with its effective tags, ordered by id.
func (s *TreeServiceImpl) ListTrees(ctx context.Context, filters primary.TreeFilters) ([]*primary.TreeView, error) {
	snapshot := s.store.Snapshot()
	active := s.patches.List(ctx, patch.BucketActive)
	pending := s.patches.List(ctx, patch.BucketPending)
	orchards := s.store.Orchards.Get()

	var views []*primary.TreeView
	for _, id := range snapshot.IDs() {
		view := s.view(snapshot[id], active, pending)
		if filters.OnlyPatched && !view.Patched && !view.Pending {
			continue
		}
		if filters.Genus != "" && !strings.EqualFold(view.Effective["genus"], filters.Genus) {
			continue
		}
		if filters.WithIssues || filters.OnlyWithIssues {
			res := s.engine.Validate(validation.Input{Tags: view.Effective, Point: view.Tree.Point(), Orchards: orchards})
			if filters.OnlyWithIssues && res.Empty() {
				continue
			}
			view.Issues = &res
		}
		views = append(views, view)
	}
	return views, nil
}

// GetTree returns one tree with its effective tags and issues.
func (s *TreeServiceImpl) GetTree(ctx context.Context, id int64) (*primary.TreeView, error) {
	tree, ok := s.store.Tree(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrTreeNotFound, id)
	}
	view := s.view(tree, s.patches.List(ctx, patch.BucketActive), s.patches.List(ctx, patch.BucketPending))
	res := s.engine.Validate(validation.Input{Tags: view.Effective, Point: tree.Point(), Orchards: s.store.Orchards.Get()})
	view.Issues = &res
	return view, nil
}

// AddTree places a new tree locally and records its tags as a patch.
func (s *TreeServiceImpl) AddTree(ctx context.Context, req primary.AddTreeRequest) (*primary.TreeView, error) {
	base, ok := entity.TreeTypes[req.Type]
	if !ok {
		return nil, fmt.Errorf("unknown tree type %q (expected one of %s)", req.Type, strings.Join(entity.TreeTypeNames(), ", "))
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lon < -180 || req.Lon > 180 || (req.Lat == 0 && req.Lon == 0) {
		return nil, fmt.Errorf("invalid location %.6f,%.6f", req.Lat, req.Lon)
	}

	changes := base.Clone()
	for k, v := range req.Tags {
		changes[k] = v
	}

	id := patch.NextLocalID(s.idsInUse(ctx))
	if _, err := s.patches.AddOrUpdate(ctx, primary.AddPatchRequest{
		EntityID:    id,
		BaseVersion: patch.NewEntityVersion,
		Changes:     changes,
		Lat:         req.Lat,
		Lon:         req.Lon,
	}); err != nil {
		return nil, fmt.Errorf("failed to add tree: %w", err)
	}
	return s.GetTree(ctx, id)
}

// Status returns the entity store state.
func (s *TreeServiceImpl) Status(ctx context.Context) (*primary.FetchStatus, error) {
	return s.store.Status(), nil
}

func (s *TreeServiceImpl) idsInUse(ctx context.Context) []int64 {
	ids := s.store.Snapshot().IDs()
	for _, bucket := range patch.Buckets {
		ids = append(ids, s.patches.List(ctx, bucket).IDs()...)
	}
	return ids
}

func (s *TreeServiceImpl) view(tree entity.Tree, active, pending patch.Set) *primary.TreeView {
	var p *patch.Patch
	if ap, ok := active[tree.ID]; ok {
		p = &ap
	}
	effective := patch.Effective(tree.Tags, p)
	_, inPending := pending[tree.ID]
	return &primary.TreeView{
		Tree:      tree,
		Effective: effective,
		Name:      entity.DisplayName(tree.ID, effective),
		Patched:   p != nil,
		Pending:   inPending,
	}
}

// Ensure TreeServiceImpl implements the interface
var _ primary.TreeService = (*TreeServiceImpl)(nil)

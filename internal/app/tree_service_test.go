package app

import (
	"context"
	"errors"
	"testing"

	"github.com/example/treewarden/internal/core/entity"
	"github.com/example/treewarden/internal/core/validation"
	"github.com/example/treewarden/internal/ports/primary"
)

func newTreeFixture(t *testing.T) (*TreeServiceImpl, *PatchServiceImpl, *EntityStore) {
	t.Helper()
	store := NewEntityStore()
	store.Trees.Set(entity.NewSnapshot(sampleTrees()))
	patches, _, _ := newTestPatchService(t)
	store.TrackPatches(patches.State())
	engine := validation.NewEngine()
	return NewTreeService(store, patches, &engine), patches, store
}

func TestTreeService_ListTreesShowsEffectiveTags(t *testing.T) {
	ctx := context.Background()
	svc, patches, _ := newTreeFixture(t)
	_, _ = patches.AddOrUpdate(ctx, primary.AddPatchRequest{EntityID: 100, BaseVersion: 4, Changes: map[string]string{"taxon:cultivar": "Boskoop"}})

	views, err := svc.ListTrees(ctx, primary.TreeFilters{})
	if err != nil {
		t.Fatalf("ListTrees() error = %v", err)
	}
	if len(views) != 2 || views[0].Tree.ID != 100 {
		t.Fatalf("unexpected views: %+v", views)
	}
	if !views[0].Patched || views[0].Name != "Boskoop" || views[0].Effective["genus"] != "Malus" {
		t.Errorf("view = %+v", views[0])
	}
	if views[0].Tree.Tags["taxon:cultivar"] != "" {
		t.Error("snapshot tags must not be mutated")
	}
}

func TestTreeService_ListTreesFilters(t *testing.T) {
	ctx := context.Background()
	svc, patches, _ := newTreeFixture(t)
	_, _ = patches.AddOrUpdate(ctx, primary.AddPatchRequest{EntityID: 200, BaseVersion: 2, Changes: map[string]string{"height": "3"}})

	tests := []struct {
		name    string
		filters primary.TreeFilters
		wantIDs []int64
	}{
		{"all", primary.TreeFilters{}, []int64{100, 200}},
		{"only patched", primary.TreeFilters{OnlyPatched: true}, []int64{200}},
		{"genus", primary.TreeFilters{Genus: "malus"}, []int64{100}},
		// 100 lacks a species; 200 lacks reference tags.
		{"only with issues", primary.TreeFilters{OnlyWithIssues: true}, []int64{100, 200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, err := svc.ListTrees(ctx, tt.filters)
			if err != nil {
				t.Fatalf("ListTrees() error = %v", err)
			}
			var ids []int64
			for _, v := range views {
				ids = append(ids, v.Tree.ID)
				if tt.filters.OnlyWithIssues && v.Issues == nil {
					t.Error("issues should be filled")
				}
			}
			if len(ids) != len(tt.wantIDs) {
				t.Fatalf("ids = %v, want %v", ids, tt.wantIDs)
			}
			for i := range ids {
				if ids[i] != tt.wantIDs[i] {
					t.Errorf("ids = %v, want %v", ids, tt.wantIDs)
				}
			}
		})
	}
}

func TestTreeService_GetTree(t *testing.T) {
	svc, _, _ := newTreeFixture(t)

	view, err := svc.GetTree(context.Background(), 100)
	if err != nil {
		t.Fatalf("GetTree() error = %v", err)
	}
	if view.Issues == nil || len(view.Issues.Errors) != 1 {
		t.Errorf("expected the missing species error, got %+v", view.Issues)
	}

	if _, err := svc.GetTree(context.Background(), 999); !errors.Is(err, ErrTreeNotFound) {
		t.Errorf("err = %v, want ErrTreeNotFound", err)
	}
}

func TestTreeService_AddTree(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTreeFixture(t)

	first, err := svc.AddTree(ctx, primary.AddTreeRequest{Lat: 50.07, Lon: 7.07, Type: "pear", Tags: map[string]string{"start_date": "2024"}})
	if err != nil {
		t.Fatalf("AddTree() error = %v", err)
	}
	if first.Tree.ID != -1 || !first.Tree.IsLocal() {
		t.Errorf("first local id = %d, want -1", first.Tree.ID)
	}
	if first.Effective["species"] != "Pyrus communis" || first.Effective["start_date"] != "2024" {
		t.Errorf("effective = %v", first.Effective)
	}

	second, err := svc.AddTree(ctx, primary.AddTreeRequest{Lat: 50.08, Lon: 7.08, Type: "apple"})
	if err != nil {
		t.Fatalf("AddTree() error = %v", err)
	}
	if second.Tree.ID != -2 {
		t.Errorf("second local id = %d, want -2", second.Tree.ID)
	}

	status, _ := svc.Status(ctx)
	if status.LocalTreeCount != 2 || len(store.Snapshot()) != 4 {
		t.Errorf("status = %+v", status)
	}
}

func TestTreeService_AddTreeRejectsBadInput(t *testing.T) {
	svc, _, _ := newTreeFixture(t)
	ctx := context.Background()

	if _, err := svc.AddTree(ctx, primary.AddTreeRequest{Lat: 50, Lon: 7, Type: "banana"}); err == nil {
		t.Error("expected error for unknown type")
	}
	if _, err := svc.AddTree(ctx, primary.AddTreeRequest{Lat: 95, Lon: 7, Type: "apple"}); err == nil {
		t.Error("expected error for out-of-range latitude")
	}
}

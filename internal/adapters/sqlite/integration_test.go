package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/treewarden/internal/adapters/sqlite"
	"github.com/example/treewarden/internal/app"
	"github.com/example/treewarden/internal/core/patch"
	"github.com/example/treewarden/internal/ctxutil"
	"github.com/example/treewarden/internal/ports/primary"
	"github.com/example/treewarden/internal/ports/secondary"
)

// Integration tests run the patch service over the real repositories.

func TestIntegration_PatchesSurviveRestart(t *testing.T) {
	db := setupTestDB(t)
	ctx := ctxutil.WithEditor(context.Background(), ctxutil.Editor{UserID: 7, Username: "anna"})

	slots := sqlite.NewPatchSlotRepository(db)
	editLog := sqlite.NewEditLogRepository(db)

	first, err := app.NewPatchService(ctx, slots, editLog, nil)
	if err != nil {
		t.Fatalf("NewPatchService() error = %v", err)
	}
	if _, err := first.AddOrUpdate(ctx, primary.AddPatchRequest{EntityID: 100, BaseVersion: 4, Changes: map[string]string{"species": "Malus domestica"}}); err != nil {
		t.Fatalf("AddOrUpdate() error = %v", err)
	}
	if _, err := first.AddOrUpdate(ctx, primary.AddPatchRequest{EntityID: -1, Changes: map[string]string{"natural": "tree"}, Lat: 50.1, Lon: 7.1}); err != nil {
		t.Fatalf("AddOrUpdate() error = %v", err)
	}
	if err := first.MoveToPending(ctx, 100); err != nil {
		t.Fatalf("MoveToPending() error = %v", err)
	}

	second, err := app.NewPatchService(ctx, slots, editLog, nil)
	if err != nil {
		t.Fatalf("NewPatchService() after restart error = %v", err)
	}
	counts := second.Counts(ctx)
	if counts[patch.BucketActive] != 1 || counts[patch.BucketPending] != 1 {
		t.Fatalf("counts after restart = %v", counts)
	}
	local, ok := second.Get(ctx, patch.BucketActive, -1)
	if !ok || local.Lat != 50.1 || local.Username != "anna" || local.UserID != 7 {
		t.Errorf("local tree patch = %+v", local)
	}
	pending, ok := second.Get(ctx, patch.BucketPending, 100)
	if !ok || pending.Changes["species"] != "Malus domestica" || pending.BaseVersion != 4 {
		t.Errorf("pending patch = %+v", pending)
	}
}

func TestIntegration_EditLogRecordsTransitions(t *testing.T) {
	db := setupTestDB(t)
	ctx := ctxutil.WithEditor(context.Background(), ctxutil.Editor{Username: "anna"})

	editLog := sqlite.NewEditLogRepository(db)
	patches, err := app.NewPatchService(ctx, sqlite.NewPatchSlotRepository(db), editLog, nil)
	if err != nil {
		t.Fatalf("NewPatchService() error = %v", err)
	}

	_, _ = patches.AddOrUpdate(ctx, primary.AddPatchRequest{EntityID: 100, BaseVersion: 4, Changes: map[string]string{"height": "4"}})
	_ = patches.MoveToPending(ctx, 100)
	_ = patches.Apply(ctx, 100)

	id := int64(100)
	entries, err := editLog.List(ctx, secondary.EditLogFilters{EntityID: &id})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var actions []string
	for _, e := range entries {
		actions = append(actions, e.Action)
		if e.Actor != "anna" {
			t.Errorf("actor = %q, want anna", e.Actor)
		}
	}
	want := []string{app.ActionApply, app.ActionMoveToPending, app.ActionSet}
	if len(actions) != len(want) {
		t.Fatalf("actions = %v, want %v", actions, want)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Errorf("actions = %v, want %v", actions, want)
		}
	}
}

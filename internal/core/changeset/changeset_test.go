package changeset

import (
	"errors"
	"reflect"
	"testing"

	"github.com/example/treewarden/internal/core/entity"
	"github.com/example/treewarden/internal/core/patch"
)

func snapshot() entity.Snapshot {
	return entity.NewSnapshot([]entity.Tree{
		{ID: 100, Lat: 50.1, Lon: 7.1, Version: 4, Tags: entity.Tags{"natural": "tree", "genus": "Malus", "note": " "}},
		{ID: 200, Lat: 50.2, Lon: 7.2, Version: 2, Tags: entity.Tags{"natural": "tree"}},
		{ID: -1, Lat: 50.3, Lon: 7.3, Tags: entity.Tags{"natural": "tree"}},
	})
}

func TestBuildUpload_NoPatches(t *testing.T) {
	payload, _, err := BuildUpload(patch.Set{}, snapshot())
	if err != nil || payload != nil {
		t.Errorf("BuildUpload(empty) = %v, %v; want nil, nil", payload, err)
	}
}

func TestBuildUpload_EmptySnapshot(t *testing.T) {
	patches := patch.Set{100: {EntityID: 100, BaseVersion: 4, Changes: map[string]string{"species": "Malus domestica"}}}

	for _, build := range []func(patch.Set, entity.Snapshot) (*Payload, Report, error){BuildUpload, BuildDiff} {
		payload, _, err := build(patches, entity.Snapshot{})
		if !errors.Is(err, ErrEmptySnapshot) {
			t.Errorf("err = %v, want ErrEmptySnapshot", err)
		}
		if payload != nil {
			t.Error("expected no payload with empty snapshot")
		}
	}
}

func TestBuildUpload_ModifyMergesAndDropsBlank(t *testing.T) {
	patches := patch.Set{100: {EntityID: 100, BaseVersion: 4, Changes: map[string]string{
		"species": "Malus domestica",
		"genus":   "",
	}}}

	payload, report, err := BuildUpload(patches, snapshot())
	if err != nil {
		t.Fatalf("BuildUpload() error = %v", err)
	}
	if len(payload.Modify) != 1 || len(payload.Create) != 0 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	node := payload.Modify[0]
	want := []Tag{{Key: "natural", Value: "tree"}, {Key: "species", Value: "Malus domestica"}}
	if !reflect.DeepEqual(node.Tags, want) {
		t.Errorf("Tags = %+v, want %+v", node.Tags, want)
	}
	if node.Version != 4 || node.Lat != 50.1 || node.Lon != 7.1 {
		t.Errorf("node = %+v", node)
	}
	if !reflect.DeepEqual(report.Included, []int64{100}) {
		t.Errorf("Included = %v", report.Included)
	}
}

func TestBuildUpload_CreateForLocalTree(t *testing.T) {
	patches := patch.Set{-1: {EntityID: -1, Changes: map[string]string{"genus": "Pyrus"}}}

	payload, _, err := BuildUpload(patches, snapshot())
	if err != nil {
		t.Fatalf("BuildUpload() error = %v", err)
	}
	if len(payload.Create) != 1 {
		t.Fatalf("expected one create, got %+v", payload)
	}
	got := payload.Create[0].TagMap()
	if got["genus"] != "Pyrus" || got["natural"] != "tree" {
		t.Errorf("create tags = %v", got)
	}
}

func TestBuildUpload_MissingBaseVersionRejectsBatch(t *testing.T) {
	patches := patch.Set{
		100: {EntityID: 100, BaseVersion: 4, Changes: map[string]string{"a": "1"}},
		200: {EntityID: 200, Changes: map[string]string{"a": "1"}},
	}

	payload, _, err := BuildUpload(patches, snapshot())
	if payload != nil {
		t.Error("expected nil payload")
	}
	if !errors.Is(err, ErrMissingBaseVersion) {
		t.Fatalf("err = %v, want ErrMissingBaseVersion", err)
	}
	var mv *MissingVersionError
	if !errors.As(err, &mv) || !reflect.DeepEqual(mv.IDs, []int64{200}) {
		t.Errorf("MissingVersionError = %+v", mv)
	}
}

func TestBuildUpload_DiscardsAbsentTree(t *testing.T) {
	patches := patch.Set{
		100: {EntityID: 100, BaseVersion: 4, Changes: map[string]string{"a": "1"}},
		999: {EntityID: 999, BaseVersion: 1, Changes: map[string]string{"a": "1"}},
	}

	payload, report, err := BuildUpload(patches, snapshot())
	if err != nil {
		t.Fatalf("BuildUpload() error = %v", err)
	}
	if !reflect.DeepEqual(payload.IDs(), []int64{100}) {
		t.Errorf("IDs = %v", payload.IDs())
	}
	if !reflect.DeepEqual(report.Discarded, []int64{999}) {
		t.Errorf("Discarded = %v", report.Discarded)
	}
}

func TestBuildUpload_AllDiscardedIsNull(t *testing.T) {
	patches := patch.Set{999: {EntityID: 999, BaseVersion: 1, Changes: map[string]string{"a": "1"}}}
	payload, report, err := BuildUpload(patches, snapshot())
	if err != nil || payload != nil {
		t.Errorf("BuildUpload() = %v, %v; want nil, nil", payload, err)
	}
	if len(report.Discarded) != 1 {
		t.Errorf("Discarded = %v", report.Discarded)
	}
}

func TestBuildDiff_KeepsChangesVerbatim(t *testing.T) {
	patches := patch.Set{
		100: {EntityID: 100, BaseVersion: 4, Changes: map[string]string{"genus": "", "species": "Malus domestica"}},
		200: {EntityID: 200, Changes: map[string]string{"height": "3"}},
	}

	payload, _, err := BuildDiff(patches, snapshot())
	if err != nil {
		t.Fatalf("BuildDiff() error = %v", err)
	}
	if len(payload.Modify) != 2 {
		t.Fatalf("expected two modify nodes, got %+v", payload)
	}
	want := []Tag{{Key: "genus", Value: ""}, {Key: "species", Value: "Malus domestica"}}
	if !reflect.DeepEqual(payload.Modify[0].Tags, want) {
		t.Errorf("Tags = %+v, want %+v", payload.Modify[0].Tags, want)
	}
}

func TestPatchesFromDiff_RoundTrip(t *testing.T) {
	patches := patch.Set{
		100: {EntityID: 100, BaseVersion: 4, Changes: map[string]string{"genus": "", "species": "Malus domestica"}},
		-1:  {EntityID: -1, Changes: map[string]string{"genus": "Pyrus"}, Lat: 50.3, Lon: 7.3},
	}

	payload, _, err := BuildDiff(patches, snapshot())
	if err != nil {
		t.Fatalf("BuildDiff() error = %v", err)
	}
	got := PatchesFromDiff(payload)
	if !reflect.DeepEqual(got, patches) {
		t.Errorf("PatchesFromDiff() = %+v, want %+v", got, patches)
	}
}

func TestProvenanceTags(t *testing.T) {
	tags := ProvenanceTags()
	if len(tags) != 3 || tags[0].Key != "created_by" || tags[0].Value != "TreeWarden" {
		t.Errorf("ProvenanceTags() = %+v", tags)
	}
}

package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/example/treewarden/internal/core/patch"
	"github.com/example/treewarden/internal/ports/primary"
)

// mockPatchService implements primary.PatchService for testing
type mockPatchService struct {
	buckets   map[patch.Bucket]patch.Set
	lastReq   primary.AddPatchRequest
	removed   []int64
	cleared   []patch.Bucket
	clearAll  bool
	removeErr error
}

func (m *mockPatchService) AddOrUpdate(ctx context.Context, req primary.AddPatchRequest) (*patch.Patch, error) {
	m.lastReq = req
	return &patch.Patch{EntityID: req.EntityID, Changes: req.Changes}, nil
}

func (m *mockPatchService) RemoveKey(ctx context.Context, id int64, key string) error { return nil }

func (m *mockPatchService) Remove(ctx context.Context, id int64) error {
	m.removed = append(m.removed, id)
	return m.removeErr
}

func (m *mockPatchService) MoveToPending(ctx context.Context, id int64) error { return nil }
func (m *mockPatchService) Apply(ctx context.Context, id int64) error         { return nil }
func (m *mockPatchService) Restore(ctx context.Context, id int64) error       { return nil }

func (m *mockPatchService) Clear(ctx context.Context, bucket patch.Bucket) error {
	m.cleared = append(m.cleared, bucket)
	return nil
}

func (m *mockPatchService) ClearAll(ctx context.Context) error {
	m.clearAll = true
	return nil
}

func (m *mockPatchService) Get(ctx context.Context, bucket patch.Bucket, id int64) (*patch.Patch, bool) {
	p, ok := m.buckets[bucket][id]
	return &p, ok
}

func (m *mockPatchService) List(ctx context.Context, bucket patch.Bucket) patch.Set {
	return m.buckets[bucket].Clone()
}

func (m *mockPatchService) Counts(ctx context.Context) map[patch.Bucket]int {
	out := make(map[patch.Bucket]int)
	for b, set := range m.buckets {
		out[b] = len(set)
	}
	return out
}

func (m *mockPatchService) ImportDiffDocument(ctx context.Context, r io.Reader) (*primary.ImportResult, error) {
	return &primary.ImportResult{Imported: []int64{12}, Skipped: []int64{14, 13}}, nil
}

func TestPatchAdapter_List(t *testing.T) {
	svc := &mockPatchService{buckets: map[patch.Bucket]patch.Set{
		patch.BucketActive: {
			100: {EntityID: 100, BaseVersion: 4, Username: "anna", Changes: map[string]string{"species": "Malus domestica", "genus": ""}},
			-1:  {EntityID: -1, Lat: 50.1, Lon: 7.1, Changes: map[string]string{"natural": "tree"}},
		},
	}}
	var buf bytes.Buffer
	adapter := NewPatchAdapter(svc, &buf)

	if err := adapter.List(context.Background(), patch.BucketActive); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"2 active patch(es)", "Tree -1 (new at 50.1000000, 7.1000000)", "Tree 100 (v4) by anna", "  - genus", "  species=Malus domestica"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Tree -1") > strings.Index(out, "Tree 100") {
		t.Error("patches should be listed by id")
	}
}

func TestPatchAdapter_ListEmpty(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewPatchAdapter(&mockPatchService{}, &buf)

	_ = adapter.List(context.Background(), patch.BucketPending)
	if !strings.Contains(buf.String(), "No pending patches") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestPatchAdapter_Clear(t *testing.T) {
	svc := &mockPatchService{}
	var buf bytes.Buffer
	adapter := NewPatchAdapter(svc, &buf)

	_ = adapter.Clear(context.Background(), patch.BucketApplied)
	_ = adapter.Clear(context.Background(), "")

	if len(svc.cleared) != 1 || svc.cleared[0] != patch.BucketApplied {
		t.Errorf("cleared = %v", svc.cleared)
	}
	if !svc.clearAll {
		t.Error("empty bucket should clear everything")
	}
}

func TestPatchAdapter_EditAndImport(t *testing.T) {
	svc := &mockPatchService{}
	var buf bytes.Buffer
	adapter := NewPatchAdapter(svc, &buf)
	ctx := context.Background()

	if err := adapter.Edit(ctx, primary.AddPatchRequest{EntityID: 100, BaseVersion: 4, Changes: map[string]string{"a": "1", "b": "2"}}); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if err := adapter.Import(ctx, strings.NewReader("")); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"✓ Tree 100 now has 2 pending change(s)", "✓ Imported changes for 1 tree(s)", "skipped 14, 13"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPatchAdapter_Counts(t *testing.T) {
	svc := &mockPatchService{buckets: map[patch.Bucket]patch.Set{
		patch.BucketActive:  {1: {EntityID: 1}},
		patch.BucketApplied: {2: {EntityID: 2}, 3: {EntityID: 3}},
	}}
	var buf bytes.Buffer
	NewPatchAdapter(svc, &buf).Counts(context.Background())

	if got := buf.String(); got != "Patches:  active 1, pending 0, applied 2\n" {
		t.Errorf("Counts() output = %q", got)
	}
}

package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/example/treewarden/internal/core/bounds"
	"github.com/example/treewarden/internal/core/changeset"
	"github.com/example/treewarden/internal/core/entity"
	"github.com/example/treewarden/internal/ports/secondary"
)

// Ensure mocks implement the interfaces
var (
	_ secondary.PatchSlotRepository = (*mockSlotRepository)(nil)
	_ secondary.EditLogWriter       = (*mockEditLog)(nil)
	_ secondary.GeodataClient       = (*mockGeodata)(nil)
	_ secondary.ChangesetAPI        = (*mockChangesetAPI)(nil)
)

// mockSlotRepository implements secondary.PatchSlotRepository for testing.
type mockSlotRepository struct {
	mu      sync.Mutex
	slots   map[string][]byte
	saveErr error
	saves   int
}

func newMockSlotRepository() *mockSlotRepository {
	return &mockSlotRepository{slots: make(map[string][]byte)}
}

func (m *mockSlotRepository) Load(ctx context.Context, slot string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.slots[slot]
	return data, ok, nil
}

func (m *mockSlotRepository) Save(ctx context.Context, slot string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.slots[slot] = append([]byte(nil), payload...)
	m.saves++
	return nil
}

// mockEditLog implements secondary.EditLogWriter for testing.
type mockEditLog struct {
	mu      sync.Mutex
	entries []secondary.EditLogRecord
}

func (m *mockEditLog) LogEdit(ctx context.Context, entry *secondary.EditLogRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockEditLog) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Action
	}
	return out
}

// mockGeodata implements secondary.GeodataClient for testing.
type mockGeodata struct {
	mu            sync.Mutex
	fetchTrees    func(ctx context.Context, q secondary.TreeQuery) ([]entity.Tree, error)
	fetchOrchards func(ctx context.Context, box bounds.Box) ([]entity.Orchard, error)
	treeCalls     []secondary.TreeQuery
	orchardCalls  []bounds.Box
}

func (m *mockGeodata) FetchTrees(ctx context.Context, q secondary.TreeQuery) ([]entity.Tree, error) {
	m.mu.Lock()
	m.treeCalls = append(m.treeCalls, q)
	fn := m.fetchTrees
	m.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, q)
}

func (m *mockGeodata) FetchOrchards(ctx context.Context, box bounds.Box) ([]entity.Orchard, error) {
	m.mu.Lock()
	m.orchardCalls = append(m.orchardCalls, box)
	fn := m.fetchOrchards
	m.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, box)
}

func (m *mockGeodata) counts() (trees, orchards int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.treeCalls), len(m.orchardCalls)
}

// mockChangesetAPI implements secondary.ChangesetAPI for testing.
type mockChangesetAPI struct {
	createErr error
	uploadErr error
	closeErr  error
	calls     []string
	uploaded  *changeset.Payload
}

func (m *mockChangesetAPI) CreateChangeset(ctx context.Context, tags []changeset.Tag) (int64, error) {
	m.calls = append(m.calls, "create")
	if m.createErr != nil {
		return 0, m.createErr
	}
	return 4242, nil
}

func (m *mockChangesetAPI) UploadChanges(ctx context.Context, changesetID int64, payload *changeset.Payload) (string, error) {
	m.calls = append(m.calls, "upload")
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	m.uploaded = payload
	return "<diffResult/>", nil
}

func (m *mockChangesetAPI) CloseChangeset(ctx context.Context, changesetID int64) error {
	m.calls = append(m.calls, "close")
	return m.closeErr
}

var errTransport = errors.New("connection reset")

// newTestPatchService builds a patch service over in-memory slots.
func newTestPatchService(t *testing.T) (*PatchServiceImpl, *mockSlotRepository, *mockEditLog) {
	t.Helper()
	slots := newMockSlotRepository()
	editLog := &mockEditLog{}
	svc, err := NewPatchService(context.Background(), slots, editLog, nil)
	if err != nil {
		t.Fatalf("NewPatchService() error = %v", err)
	}
	return svc, slots, editLog
}

// sampleTrees is the fixture snapshot used across service tests.
func sampleTrees() []entity.Tree {
	return []entity.Tree{
		{ID: 100, Lat: 50.05, Lon: 7.05, Version: 4, Tags: entity.Tags{"natural": "tree", "genus": "Malus"}},
		{ID: 200, Lat: 50.06, Lon: 7.06, Version: 2, Tags: entity.Tags{"natural": "tree", "genus": "Pyrus", "species": "Pyrus communis"}},
	}
}

package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/example/treewarden/internal/core/changeset"
	"github.com/example/treewarden/internal/core/osmxml"
	"github.com/example/treewarden/internal/core/patch"
	"github.com/example/treewarden/internal/ctxutil"
	"github.com/example/treewarden/internal/observable"
	"github.com/example/treewarden/internal/ports/primary"
	"github.com/example/treewarden/internal/ports/secondary"
)

// Buckets is the full content of the patch store.
type Buckets map[patch.Bucket]patch.Set

func (b Buckets) clone() Buckets {
	out := make(Buckets, len(patch.Buckets))
	for _, name := range patch.Buckets {
		out[name] = b[name].Clone()
	}
	return out
}

// putActive records p as the active patch for its entity and drops the entity
// from any bucket the edit supersedes.
func (b Buckets) putActive(p patch.Patch) {
	for _, bucket := range patch.ClearedByEdit(b.location(p.EntityID)) {
		delete(b[bucket], p.EntityID)
	}
	b[patch.BucketActive][p.EntityID] = p
}

func (b Buckets) location(id int64) patch.Location {
	_, active := b[patch.BucketActive][id]
	_, pending := b[patch.BucketPending][id]
	_, applied := b[patch.BucketApplied][id]
	return patch.Location{Active: active, Pending: pending, Applied: applied}
}

// Edit log actions.
const (
	ActionSet           = "set"
	ActionUnset         = "unset"
	ActionRemove        = "remove"
	ActionMoveToPending = "move-to-pending"
	ActionApply         = "apply"
	ActionRestore       = "restore"
	ActionClear         = "clear"
	ActionImport        = "import"
)

// PatchServiceImpl implements the PatchService interface.
// Mutations are serialized; every mutation rewrites all buckets to their slots
// before the new state becomes visible.
type PatchServiceImpl struct {
	mu      sync.Mutex
	state   *observable.Cell[Buckets]
	slots   secondary.PatchSlotRepository
	editLog secondary.EditLogWriter
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// NewPatchService creates a PatchService and loads the persisted buckets.
// Missing or unreadable slots start empty.
func NewPatchService(ctx context.Context, slots secondary.PatchSlotRepository, editLog secondary.EditLogWriter, logger *zap.SugaredLogger) (*PatchServiceImpl, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &PatchServiceImpl{
		slots:   slots,
		editLog: editLog,
		logger:  logger,
		now:     time.Now,
	}

	loaded := make(Buckets, len(patch.Buckets))
	for _, bucket := range patch.Buckets {
		set, err := s.loadSlot(ctx, bucket)
		if err != nil {
			return nil, err
		}
		loaded[bucket] = set
	}
	s.state = observable.NewCell(loaded)
	return s, nil
}

func (s *PatchServiceImpl) loadSlot(ctx context.Context, bucket patch.Bucket) (patch.Set, error) {
	data, found, err := s.slots.Load(ctx, string(bucket))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s patches: %w", bucket, err)
	}
	if !found {
		return patch.Set{}, nil
	}

	var set patch.Set
	if err := json.Unmarshal(data, &set); err != nil {
		s.logger.Warnw("Discarding unreadable patch slot", "slot", bucket, "error", err)
		return patch.Set{}, nil
	}
	if set == nil {
		set = patch.Set{}
	}
	return set, nil
}

// State exposes the observable bucket state. Subscribers must not call back into the service.
func (s *PatchServiceImpl) State() *observable.Cell[Buckets] {
	return s.state
}

// AddOrUpdate merges changes into the tree's active patch.
func (s *PatchServiceImpl) AddOrUpdate(ctx context.Context, req primary.AddPatchRequest) (*patch.Patch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.state.Get()
	guard := patch.CanEdit(patch.EditContext{
		EntityID:   req.EntityID,
		InPending:  current.location(req.EntityID).Pending,
		HasChanges: len(req.Changes) > 0,
	})
	if !guard.Allowed {
		return nil, guard.Error()
	}

	editor := ctxutil.EditorFromContext(ctx)
	if req.Username == "" {
		req.Username = editor.Username
	}
	if req.UserID == 0 {
		req.UserID = editor.UserID
	}

	var existing *patch.Patch
	if p, ok := current[patch.BucketActive][req.EntityID]; ok {
		existing = &p
	}
	merged := patch.Merge(existing, patch.MergeRequest{
		EntityID:    req.EntityID,
		BaseVersion: req.BaseVersion,
		Changes:     req.Changes,
		UserID:      req.UserID,
		Username:    req.Username,
		Lat:         req.Lat,
		Lon:         req.Lon,
		Now:         s.now(),
	})

	next := current.clone()
	next.putActive(merged)
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}

	for _, key := range merged.SortedKeys() {
		newValue, changed := req.Changes[key]
		if !changed {
			continue
		}
		var oldValue string
		if existing != nil {
			oldValue = existing.Changes[key]
		}
		s.logEdit(ctx, req.EntityID, ActionSet, key, oldValue, newValue)
	}

	out := merged.Clone()
	return &out, nil
}

// RemoveKey drops a single key from the active patch. A patch left without keys is deleted.
func (s *PatchServiceImpl) RemoveKey(ctx context.Context, id int64, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.state.Get()
	p, ok := current[patch.BucketActive][id]
	if !ok {
		return nil
	}
	oldValue, ok := p.Changes[key]
	if !ok {
		return nil
	}

	next := current.clone()
	if remaining, keep := patch.WithoutKey(p, key); keep {
		next[patch.BucketActive][id] = remaining
	} else {
		delete(next[patch.BucketActive], id)
	}
	if err := s.commit(ctx, next); err != nil {
		return err
	}

	s.logEdit(ctx, id, ActionUnset, key, oldValue, "")
	return nil
}

// Remove deletes the active patch of a tree.
func (s *PatchServiceImpl) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.state.Get()
	if _, ok := current[patch.BucketActive][id]; !ok {
		return nil
	}

	next := current.clone()
	delete(next[patch.BucketActive], id)
	if err := s.commit(ctx, next); err != nil {
		return err
	}

	s.logEdit(ctx, id, ActionRemove, "", "", "")
	return nil
}

// MoveToPending moves an active patch to pending.
func (s *PatchServiceImpl) MoveToPending(ctx context.Context, id int64) error {
	return s.transition(ctx, id, patch.TransitionMoveToPending, ActionMoveToPending)
}

// Apply moves a pending patch to applied.
func (s *PatchServiceImpl) Apply(ctx context.Context, id int64) error {
	return s.transition(ctx, id, patch.TransitionApply, ActionApply)
}

// Restore moves a pending patch back to active.
func (s *PatchServiceImpl) Restore(ctx context.Context, id int64) error {
	return s.transition(ctx, id, patch.TransitionRestore, ActionRestore)
}

func (s *PatchServiceImpl) transition(ctx context.Context, id int64, t patch.Transition, action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.state.Get()
	from, to, ok := patch.PlanTransition(t, current.location(id))
	if !ok {
		return nil
	}

	next := current.clone()
	next[to][id] = next[from][id]
	delete(next[from], id)
	if err := s.commit(ctx, next); err != nil {
		return err
	}

	s.logEdit(ctx, id, action, "", string(from), string(to))
	return nil
}

// Clear empties one bucket.
func (s *PatchServiceImpl) Clear(ctx context.Context, bucket patch.Bucket) error {
	return s.clear(ctx, bucket)
}

// ClearAll empties every bucket.
func (s *PatchServiceImpl) ClearAll(ctx context.Context) error {
	return s.clear(ctx, patch.Buckets...)
}

type clearedPatch struct {
	id     int64
	bucket patch.Bucket
}

func (s *PatchServiceImpl) clear(ctx context.Context, buckets ...patch.Bucket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.state.Get()
	next := current.clone()
	var cleared []clearedPatch
	for _, bucket := range buckets {
		if _, err := patch.ParseBucket(string(bucket)); err != nil {
			return err
		}
		for _, id := range current[bucket].IDs() {
			cleared = append(cleared, clearedPatch{id: id, bucket: bucket})
		}
		next[bucket] = patch.Set{}
	}
	if len(cleared) == 0 {
		return nil
	}
	if err := s.commit(ctx, next); err != nil {
		return err
	}

	for _, c := range cleared {
		s.logEdit(ctx, c.id, ActionClear, "", string(c.bucket), "")
	}
	return nil
}

// Get returns a copy of the tree's patch in a bucket.
func (s *PatchServiceImpl) Get(ctx context.Context, bucket patch.Bucket, id int64) (*patch.Patch, bool) {
	p, ok := s.state.Get()[bucket][id]
	if !ok {
		return nil, false
	}
	out := p.Clone()
	return &out, true
}

// List returns a copy of a bucket.
func (s *PatchServiceImpl) List(ctx context.Context, bucket patch.Bucket) patch.Set {
	return s.state.Get()[bucket].Clone()
}

// Counts returns the number of patches per bucket.
func (s *PatchServiceImpl) Counts(ctx context.Context) map[patch.Bucket]int {
	current := s.state.Get()
	out := make(map[patch.Bucket]int, len(patch.Buckets))
	for _, bucket := range patch.Buckets {
		out[bucket] = len(current[bucket])
	}
	return out
}

// ImportDiffDocument merges an osmChange document into the active bucket.
// Deleted nodes and trees mid-upload are skipped.
func (s *PatchServiceImpl) ImportDiffDocument(ctx context.Context, r io.Reader) (*primary.ImportResult, error) {
	doc, err := osmxml.DecodeDiffDocument(r)
	if err != nil {
		return nil, err
	}
	imported := changeset.PatchesFromDiff(doc)

	s.mu.Lock()
	defer s.mu.Unlock()

	result := &primary.ImportResult{}
	for _, n := range doc.Delete {
		result.Skipped = append(result.Skipped, n.ID)
	}

	current := s.state.Get()
	next := current.clone()
	for _, id := range imported.IDs() {
		p := imported[id]
		if current.location(id).Pending {
			result.Skipped = append(result.Skipped, id)
			continue
		}
		var existing *patch.Patch
		if ep, ok := next[patch.BucketActive][id]; ok {
			existing = &ep
		}
		next.putActive(patch.Merge(existing, patch.MergeRequest{
			EntityID:    id,
			BaseVersion: p.BaseVersion,
			Changes:     p.Changes,
			Lat:         p.Lat,
			Lon:         p.Lon,
			Now:         s.now(),
		}))
		result.Imported = append(result.Imported, id)
	}

	if len(result.Imported) == 0 {
		return result, nil
	}
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}

	for _, id := range result.Imported {
		s.logEdit(ctx, id, ActionImport, "", "", fmt.Sprintf("%d keys", len(imported[id].Changes)))
	}
	s.logger.Infow("Imported diff document", "imported", len(result.Imported), "skipped", len(result.Skipped))
	return result, nil
}

// commit persists every bucket and then publishes the new state. Caller holds mu.
func (s *PatchServiceImpl) commit(ctx context.Context, next Buckets) error {
	for _, bucket := range patch.Buckets {
		data, err := json.Marshal(next[bucket])
		if err != nil {
			return fmt.Errorf("failed to encode %s patches: %w", bucket, err)
		}
		if err := s.slots.Save(ctx, string(bucket), data); err != nil {
			return fmt.Errorf("failed to persist %s patches: %w", bucket, err)
		}
	}
	s.state.Set(next)
	return nil
}

func (s *PatchServiceImpl) logEdit(ctx context.Context, id int64, action, field, oldValue, newValue string) {
	if s.editLog == nil {
		return
	}
	err := s.editLog.LogEdit(ctx, &secondary.EditLogRecord{
		EntityID:  id,
		Action:    action,
		FieldName: field,
		OldValue:  oldValue,
		NewValue:  newValue,
	})
	if err != nil {
		s.logger.Warnw("Failed to write edit log", "entity_id", id, "action", action, "error", err)
	}
}

// Ensure PatchServiceImpl implements the interface
var _ primary.PatchService = (*PatchServiceImpl)(nil)

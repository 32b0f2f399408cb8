// Package app contains the application services that orchestrate business logic.
package app

import (
	"sort"
	"time"

	"github.com/example/treewarden/internal/core/bounds"
	"github.com/example/treewarden/internal/core/entity"
	"github.com/example/treewarden/internal/core/patch"
	"github.com/example/treewarden/internal/observable"
	"github.com/example/treewarden/internal/ports/primary"
)

// EntityStore holds the fetched trees and orchards plus the fetch flags.
// Every field is an observable cell; subscribers run synchronously on the setting goroutine.
type EntityStore struct {
	Trees           *observable.Cell[entity.Snapshot]
	LocalTrees      *observable.Cell[[]entity.Tree]
	Orchards        *observable.Cell[[]entity.Orchard]
	Loading         *observable.Cell[bool]
	Error           *observable.Cell[string]
	OrchardLoading  *observable.Cell[bool]
	OrchardError    *observable.Cell[string]
	LastBounds      *observable.Cell[*bounds.Box]
	LastUpdated     *observable.Cell[time.Time]
	OrchardsUpdated *observable.Cell[time.Time]
}

// NewEntityStore creates an empty store.
func NewEntityStore() *EntityStore {
	return &EntityStore{
		Trees:           observable.NewCell(entity.Snapshot{}),
		LocalTrees:      observable.NewCell[[]entity.Tree](nil),
		Orchards:        observable.NewCell[[]entity.Orchard](nil),
		Loading:         observable.NewCell(false),
		Error:           observable.NewCell(""),
		OrchardLoading:  observable.NewCell(false),
		OrchardError:    observable.NewCell(""),
		LastBounds:      observable.NewCell[*bounds.Box](nil),
		LastUpdated:     observable.NewCell(time.Time{}),
		OrchardsUpdated: observable.NewCell(time.Time{}),
	}
}

// Snapshot returns the fetched trees merged with the locally created ones.
// Fetched trees win on id collisions.
func (s *EntityStore) Snapshot() entity.Snapshot {
	fetched := s.Trees.Get()
	local := s.LocalTrees.Get()
	out := make(entity.Snapshot, len(fetched)+len(local))
	for _, t := range local {
		out[t.ID] = t
	}
	for id, t := range fetched {
		out[id] = t
	}
	return out
}

// Tree looks a tree up in Snapshot.
func (s *EntityStore) Tree(id int64) (entity.Tree, bool) {
	if t, ok := s.Trees.Get()[id]; ok {
		return t, true
	}
	for _, t := range s.LocalTrees.Get() {
		if t.ID == id {
			return t, true
		}
	}
	return entity.Tree{}, false
}

// EffectiveTree composes a tree with its active patch.
func (s *EntityStore) EffectiveTree(id int64, active patch.Set) (entity.Tree, map[string]string, bool) {
	t, ok := s.Tree(id)
	if !ok {
		return entity.Tree{}, nil, false
	}
	var p *patch.Patch
	if ap, found := active[id]; found {
		p = &ap
	}
	return t, patch.Effective(t.Tags, p), true
}

// TrackPatches keeps LocalTrees in sync with the patch buckets and returns the unsubscribe func.
func (s *EntityStore) TrackPatches(buckets *observable.Cell[Buckets]) func() {
	s.LocalTrees.Set(LocalTrees(buckets.Get()))
	return buckets.Subscribe(func(_, next Buckets) {
		s.LocalTrees.Set(LocalTrees(next))
	})
}

// Status summarises the store for display.
func (s *EntityStore) Status() *primary.FetchStatus {
	return &primary.FetchStatus{
		Loading:         s.Loading.Get(),
		Error:           s.Error.Get(),
		OrchardLoading:  s.OrchardLoading.Get(),
		OrchardError:    s.OrchardError.Get(),
		TreeCount:       len(s.Trees.Get()),
		OrchardCount:    len(s.Orchards.Get()),
		LocalTreeCount:  len(s.LocalTrees.Get()),
		LastBounds:      s.LastBounds.Get(),
		LastUpdated:     s.LastUpdated.Get(),
		OrchardsUpdated: s.OrchardsUpdated.Get(),
	}
}

// LocalTrees synthesizes the trees created locally from the active and pending buckets.
// Their tags are empty: everything they carry lives in the patch.
func LocalTrees(b Buckets) []entity.Tree {
	seen := make(map[int64]bool)
	var out []entity.Tree
	for _, bucket := range []patch.Bucket{patch.BucketActive, patch.BucketPending} {
		for id, p := range b[bucket] {
			if !p.IsNew() || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, entity.Tree{ID: id, Lat: p.Lat, Lon: p.Lon, Tags: entity.Tags{}})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

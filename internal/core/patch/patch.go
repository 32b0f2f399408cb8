// Package patch contains the pure business logic for local tree edits.
// This is part of the Functional Core - no I/O, only pure functions.
package patch

import (
	"errors"
	"sort"
	"time"
)

// NewEntityVersion is the base version recorded for trees created locally.
const NewEntityVersion = 0

// Bucket names one of the three lifecycle buckets.
type Bucket string

const (
	BucketActive  Bucket = "active"
	BucketPending Bucket = "pending"
	BucketApplied Bucket = "applied"
)

// Buckets lists every bucket in lifecycle order.
var Buckets = []Bucket{BucketActive, BucketPending, BucketApplied}

// ParseBucket validates a bucket name.
func ParseBucket(s string) (Bucket, error) {
	for _, b := range Buckets {
		if string(b) == s {
			return b, nil
		}
	}
	return "", errors.New("unknown bucket " + s + " (expected active, pending or applied)")
}

// Patch is the set of pending attribute changes for one tree.
// An empty value in Changes means "clear this tag".
type Patch struct {
	EntityID    int64             `json:"osmId"`
	BaseVersion int               `json:"version"`
	Changes     map[string]string `json:"changes"`
	Timestamp   string            `json:"timestamp,omitempty"`
	UserID      int64             `json:"userId,omitempty"`
	Username    string            `json:"username,omitempty"`

	// Placement of a locally created tree; zero for upstream trees.
	Lat float64 `json:"lat,omitempty"`
	Lon float64 `json:"lon,omitempty"`
}

// IsNew reports whether the patch describes a locally created tree.
func (p Patch) IsNew() bool {
	return p.EntityID < 0
}

// Clone returns a deep copy of the patch.
func (p Patch) Clone() Patch {
	out := p
	out.Changes = make(map[string]string, len(p.Changes))
	for k, v := range p.Changes {
		out.Changes[k] = v
	}
	return out
}

// SortedKeys returns the changed keys in sorted order.
func (p Patch) SortedKeys() []string {
	keys := make([]string, 0, len(p.Changes))
	for k := range p.Changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set is a bucket's content: at most one patch per entity id.
type Set map[int64]Patch

// Clone deep-copies the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id, p := range s {
		out[id] = p.Clone()
	}
	return out
}

// IDs returns the entity ids in ascending order.
func (s Set) IDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MergeRequest describes one edit to apply on top of an existing patch.
type MergeRequest struct {
	EntityID    int64
	BaseVersion int
	Changes     map[string]string
	UserID      int64
	Username    string
	Lat         float64
	Lon         float64
	Now         time.Time
}

// Merge folds req into existing (nil when the tree has no patch yet) and returns the result.
// Keys in req overwrite existing keys (last write wins). The existing base version is kept
// unless it was unknown. Inputs are never mutated.
func Merge(existing *Patch, req MergeRequest) Patch {
	var out Patch
	if existing != nil {
		out = existing.Clone()
	} else {
		out = Patch{
			EntityID:    req.EntityID,
			BaseVersion: req.BaseVersion,
			Changes:     make(map[string]string, len(req.Changes)),
			Lat:         req.Lat,
			Lon:         req.Lon,
		}
	}

	if out.BaseVersion == 0 && req.BaseVersion != 0 {
		out.BaseVersion = req.BaseVersion
	}
	for k, v := range req.Changes {
		out.Changes[k] = v
	}
	if req.UserID != 0 {
		out.UserID = req.UserID
	}
	if req.Username != "" {
		out.Username = req.Username
	}
	if out.IsNew() && req.Lat != 0 && req.Lon != 0 {
		out.Lat, out.Lon = req.Lat, req.Lon
	}
	out.Timestamp = req.Now.UTC().Format(time.RFC3339)

	return out
}

// WithoutKey returns the patch with key removed and whether any changes remain.
// A patch left with no keys must be deleted rather than stored empty.
func WithoutKey(p Patch, key string) (Patch, bool) {
	out := p.Clone()
	delete(out.Changes, key)
	return out, len(out.Changes) > 0
}

// Effective overlays the patch changes on the snapshot tags (patch wins) and
// returns a new map. Neither input is modified. A nil patch yields a copy of tags.
func Effective(tags map[string]string, p *Patch) map[string]string {
	size := len(tags)
	if p != nil {
		size += len(p.Changes)
	}
	out := make(map[string]string, size)
	for k, v := range tags {
		out[k] = v
	}
	if p != nil {
		for k, v := range p.Changes {
			out[k] = v
		}
	}
	return out
}

// NextLocalID returns the next negative placeholder id below every id in use.
func NextLocalID(inUse []int64) int64 {
	next := int64(-1)
	for _, id := range inUse {
		if id <= next {
			next = id - 1
		}
	}
	return next
}

// Package changeset reconciles local patches with the fetched snapshot into
// upload payloads and portable diff documents.
// This is part of the Functional Core - no I/O, only pure functions.
package changeset

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/example/treewarden/internal/core/entity"
	"github.com/example/treewarden/internal/core/patch"
)

// ErrEmptySnapshot is returned when patches exist but no trees are loaded to reconcile them against.
var ErrEmptySnapshot = errors.New("no trees loaded: refusing to build changes without coordinates and versions")

// ErrMissingBaseVersion is matched by *MissingVersionError.
var ErrMissingBaseVersion = errors.New("missing base version")

// MissingVersionError lists the existing trees whose patches carry no base version.
type MissingVersionError struct {
	IDs []int64
}

func (e *MissingVersionError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("%s for node(s) %s: reload the trees before uploading", ErrMissingBaseVersion, strings.Join(ids, ", "))
}

func (e *MissingVersionError) Unwrap() error { return ErrMissingBaseVersion }

// Provenance tags attached to every changeset.
const (
	CreatedBy = "TreeWarden"
	Comment   = "Tree data updates via TreeWarden application"
	Source    = "TreeWarden command line"
)

// Tag is one key/value pair in wire order.
type Tag struct {
	Key   string
	Value string
}

// ProvenanceTags returns the changeset metadata tags.
func ProvenanceTags() []Tag {
	return []Tag{
		{Key: "created_by", Value: CreatedBy},
		{Key: "comment", Value: Comment},
		{Key: "source", Value: Source},
	}
}

// Node is one tree in a payload.
type Node struct {
	ID      int64
	Lat     float64
	Lon     float64
	Version int
	Tags    []Tag
}

// TagMap returns the node tags as a map.
func (n Node) TagMap() map[string]string {
	out := make(map[string]string, len(n.Tags))
	for _, t := range n.Tags {
		out[t.Key] = t.Value
	}
	return out
}

// Payload groups nodes by the operation they are destined for.
type Payload struct {
	Create []Node
	Modify []Node
	Delete []Node
}

// Len returns the number of nodes across all operations.
func (p *Payload) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Create) + len(p.Modify) + len(p.Delete)
}

// IDs returns every node id in the payload, ascending.
func (p *Payload) IDs() []int64 {
	if p == nil {
		return nil
	}
	ids := make([]int64, 0, p.Len())
	for _, group := range [][]Node{p.Create, p.Modify, p.Delete} {
		for _, n := range group {
			ids = append(ids, n.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Report describes which patches made it into a payload.
type Report struct {
	Included  []int64
	Discarded []int64 // patched trees absent from the snapshot
}

// BuildUpload builds the upload payload: full tag sets with blank values dropped.
// It returns nil, nil when there is nothing to upload.
func BuildUpload(patches patch.Set, snapshot entity.Snapshot) (*Payload, Report, error) {
	return build(patches, snapshot, true)
}

// BuildDiff builds the portable diff: each node carries its patch changes verbatim,
// blank values included, so importing the document restores the patches exactly.
func BuildDiff(patches patch.Set, snapshot entity.Snapshot) (*Payload, Report, error) {
	return build(patches, snapshot, false)
}

func build(patches patch.Set, snapshot entity.Snapshot, upload bool) (*Payload, Report, error) {
	var report Report
	if len(patches) == 0 {
		return nil, report, nil
	}
	if len(snapshot) == 0 {
		return nil, report, ErrEmptySnapshot
	}

	payload := &Payload{}
	var missing []int64

	for _, id := range patches.IDs() {
		p := patches[id]
		tree, ok := snapshot[id]
		if !ok {
			report.Discarded = append(report.Discarded, id)
			continue
		}

		node := Node{ID: id, Lat: tree.Lat, Lon: tree.Lon, Version: p.BaseVersion}
		if upload {
			node.Tags = mergeTags(tree.Tags, p.Changes)
		} else {
			node.Tags = verbatimTags(p.Changes)
		}

		if p.IsNew() {
			node.Version = patch.NewEntityVersion
			payload.Create = append(payload.Create, node)
		} else {
			if upload && p.BaseVersion <= 0 {
				missing = append(missing, id)
				continue
			}
			payload.Modify = append(payload.Modify, node)
		}
		report.Included = append(report.Included, id)
	}

	if len(missing) > 0 {
		return nil, Report{Discarded: report.Discarded}, &MissingVersionError{IDs: missing}
	}
	if payload.Len() == 0 {
		return nil, report, nil
	}
	return payload, report, nil
}

// mergeTags overlays changes on the snapshot tags and drops blank values.
func mergeTags(base map[string]string, changes map[string]string) []Tag {
	merged := patch.Effective(base, &patch.Patch{Changes: changes})
	keys := make([]string, 0, len(merged))
	for k, v := range merged {
		if strings.TrimSpace(v) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tags := make([]Tag, len(keys))
	for i, k := range keys {
		tags[i] = Tag{Key: k, Value: merged[k]}
	}
	return tags
}

func verbatimTags(changes map[string]string) []Tag {
	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tags := make([]Tag, len(keys))
	for i, k := range keys {
		tags[i] = Tag{Key: k, Value: changes[k]}
	}
	return tags
}

// PatchesFromDiff converts a decoded diff document back into patches keyed by id.
// Created nodes keep their placement; deleted nodes carry no tag changes and are skipped.
func PatchesFromDiff(doc *Payload) patch.Set {
	out := make(patch.Set)
	if doc == nil {
		return out
	}
	add := func(n Node) {
		if len(n.Tags) == 0 {
			return
		}
		p := patch.Patch{
			EntityID:    n.ID,
			BaseVersion: n.Version,
			Changes:     n.TagMap(),
		}
		if p.IsNew() {
			p.BaseVersion = patch.NewEntityVersion
			p.Lat, p.Lon = n.Lat, n.Lon
		}
		out[n.ID] = p
	}
	for _, n := range doc.Create {
		add(n)
	}
	for _, n := range doc.Modify {
		add(n)
	}
	return out
}

// Package entity defines the tree and orchard records fetched from the geodata service.
// This is part of the Functional Core - no I/O, only pure functions.
package entity

import (
	"sort"
	"strconv"

	"github.com/paulmach/orb"
)

// Kind identifies the upstream element type of an orchard.
type Kind string

const (
	KindWay      Kind = "way"
	KindRelation Kind = "relation"
)

// Tags is the open-ended attribute set of an entity.
type Tags map[string]string

// Clone returns a copy of the tag set. A nil set clones to an empty map.
func (t Tags) Clone() Tags {
	out := make(Tags, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Keys returns the tag keys in sorted order.
func (t Tags) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Tree is a point entity. Trees are never mutated after they are fetched;
// local edits live in patches.
type Tree struct {
	ID        int64
	Lat       float64
	Lon       float64
	Version   int // 0 when unknown
	Timestamp string
	UID       int64
	User      string
	Tags      Tags
}

// IsLocal reports whether the tree was created locally and has no upstream id yet.
func (t Tree) IsLocal() bool {
	return t.ID < 0
}

// Point returns the tree location as an orb point (X = lon, Y = lat).
func (t Tree) Point() orb.Point {
	return orb.Point{t.Lon, t.Lat}
}

// Orchard is an area entity. Ring vertices are stored as orb points (X = lon, Y = lat).
type Orchard struct {
	ID   int64
	Kind Kind
	Ring orb.Ring
	Tags Tags
}

// Snapshot is the last-fetched set of trees indexed by id.
type Snapshot map[int64]Tree

// NewSnapshot indexes trees by id. Later duplicates win.
func NewSnapshot(trees []Tree) Snapshot {
	s := make(Snapshot, len(trees))
	for _, t := range trees {
		s[t.ID] = t
	}
	return s
}

// IDs returns the snapshot ids in ascending order.
func (s Snapshot) IDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// DisplayName picks the most specific name for a tree.
// Priority: taxon:cultivar > taxon > species > genus > "Tree <id>".
func DisplayName(id int64, tags Tags) string {
	for _, key := range []string{"taxon:cultivar", "taxon", "species", "genus"} {
		if v := tags[key]; v != "" {
			return v
		}
	}
	return "Tree " + strconv.FormatInt(id, 10)
}

// TreeTypes maps the placeable tree types to their initial tags.
var TreeTypes = map[string]Tags{
	"apple":  {"natural": "tree", "genus": "Malus", "species": "Malus domestica"},
	"pear":   {"natural": "tree", "genus": "Pyrus", "species": "Pyrus communis"},
	"cherry": {"natural": "tree", "genus": "Prunus", "species": "Prunus avium"},
	"plum":   {"natural": "tree", "genus": "Prunus", "species": "Prunus domestica"},
	"quince": {"natural": "tree", "genus": "Cydonia", "species": "Cydonia oblonga"},
	"walnut": {"natural": "tree", "genus": "Juglans", "species": "Juglans regia"},
	"tree":   {"natural": "tree"},
}

// TreeTypeNames returns the TreeTypes keys in sorted order.
func TreeTypeNames() []string {
	names := make([]string, 0, len(TreeTypes))
	for name := range TreeTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

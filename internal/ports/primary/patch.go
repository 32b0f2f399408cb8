package primary

import (
	"context"
	"io"

	"github.com/example/treewarden/internal/core/patch"
)

// PatchService defines the primary port for the local edit store.
type PatchService interface {
	// AddOrUpdate merges changes into the tree's active patch.
	AddOrUpdate(ctx context.Context, req AddPatchRequest) (*patch.Patch, error)

	// RemoveKey drops a single key from the active patch.
	RemoveKey(ctx context.Context, id int64, key string) error

	// Remove deletes the active patch of a tree.
	Remove(ctx context.Context, id int64) error

	// MoveToPending moves an active patch to pending.
	MoveToPending(ctx context.Context, id int64) error

	// Apply moves a pending patch to applied.
	Apply(ctx context.Context, id int64) error

	// Restore moves a pending patch back to active.
	Restore(ctx context.Context, id int64) error

	// Clear empties one bucket.
	Clear(ctx context.Context, bucket patch.Bucket) error

	// ClearAll empties every bucket.
	ClearAll(ctx context.Context) error

	// Get returns the patch of a tree in a bucket.
	Get(ctx context.Context, bucket patch.Bucket, id int64) (*patch.Patch, bool)

	// List returns a copy of a bucket.
	List(ctx context.Context, bucket patch.Bucket) patch.Set

	// Counts returns the number of patches per bucket.
	Counts(ctx context.Context) map[patch.Bucket]int

	// ImportDiffDocument merges an osmChange document into the active bucket.
	ImportDiffDocument(ctx context.Context, r io.Reader) (*ImportResult, error)
}

// AddPatchRequest contains the parameters for recording an edit.
type AddPatchRequest struct {
	EntityID    int64
	BaseVersion int
	Changes     map[string]string
	Username    string
	UserID      int64
	Lat         float64 // placement, for locally created trees
	Lon         float64
}

// ImportResult reports the outcome of an import.
type ImportResult struct {
	Imported []int64
	Skipped  []int64 // deleted nodes or nodes mid-upload
}

package patch

import (
	"errors"
	"fmt"
)

// ErrEntityPending is returned when an edit targets a tree whose patch is mid-upload.
var ErrEntityPending = errors.New("entity is mid-upload")

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	Err     error // sentinel to wrap, when one applies
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	if r.Err != nil {
		return fmt.Errorf("%s: %w", r.Reason, r.Err)
	}
	return fmt.Errorf("%s", r.Reason)
}

// EditContext provides the context needed to decide whether an edit may be recorded.
type EditContext struct {
	EntityID   int64
	InPending  bool
	HasChanges bool
}

// CanEdit evaluates whether a new edit can be merged into the active bucket.
// Rules: an edit must carry at least one key; trees mid-upload are locked.
func CanEdit(ctx EditContext) GuardResult {
	if !ctx.HasChanges {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("no changes given for tree %d", ctx.EntityID),
		}
	}
	if ctx.InPending {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("tree %d cannot be edited until its upload finishes", ctx.EntityID),
			Err:     ErrEntityPending,
		}
	}
	return GuardResult{Allowed: true}
}

// Location tells where an entity's patch currently lives.
type Location struct {
	Active  bool
	Pending bool
	Applied bool
}

// Transition names a lifecycle move between buckets.
type Transition string

const (
	TransitionMoveToPending Transition = "move-to-pending"
	TransitionApply         Transition = "apply"
	TransitionRestore       Transition = "restore"
)

// PlanTransition returns the source and destination buckets for a transition,
// and ok=false when the entity is not in the source bucket (a no-op, not an error).
func PlanTransition(t Transition, loc Location) (from, to Bucket, ok bool) {
	switch t {
	case TransitionMoveToPending:
		return BucketActive, BucketPending, loc.Active
	case TransitionApply:
		return BucketPending, BucketApplied, loc.Pending
	case TransitionRestore:
		// Restoring onto an active patch would lose one side of the edit.
		return BucketPending, BucketActive, loc.Pending && !loc.Active
	default:
		return "", "", false
	}
}

// ClearedByEdit returns the buckets an entity must leave when a new active
// patch is recorded for it. An entity lives in at most one bucket, so an
// already uploaded patch gives way to the fresh edit.
func ClearedByEdit(loc Location) []Bucket {
	if loc.Applied {
		return []Bucket{BucketApplied}
	}
	return nil
}

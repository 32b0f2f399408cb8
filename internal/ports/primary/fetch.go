// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the outside world drives the application.
package primary

import (
	"context"
	"time"

	"github.com/example/treewarden/internal/core/bounds"
)

// FetchService defines the primary port for viewport-driven fetching.
type FetchService interface {
	// Request fetches trees for the viewport unless it barely moved since the last request.
	Request(ctx context.Context, req FetchRequest) (*FetchOutcome, error)

	// Refresh re-runs the last request with Force set.
	Refresh(ctx context.Context) (*FetchOutcome, error)

	// WaitIdle blocks until background orchard fetches have finished.
	WaitIdle()

	// ClearError forgets the last recorded fetch error.
	ClearError()
}

// FetchRequest is one viewport change.
type FetchRequest struct {
	Bounds bounds.Box
	Zoom   int // 0 when unknown
	Force  bool
}

// FetchOutcome reports what a request did.
type FetchOutcome struct {
	Skipped     bool // viewport change below threshold
	Superseded  bool // a newer request started first
	TreeCount   int
	QueryBounds bounds.Box
	Filtered    bool // fruit genera only
}

// FetchStatus is the observable state of the entity store.
type FetchStatus struct {
	Loading         bool
	Error           string
	OrchardLoading  bool
	OrchardError    string
	TreeCount       int
	OrchardCount    int
	LocalTreeCount  int
	LastBounds      *bounds.Box
	LastUpdated     time.Time
	OrchardsUpdated time.Time
}

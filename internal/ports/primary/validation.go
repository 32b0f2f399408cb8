package primary

import (
	"context"

	"github.com/example/treewarden/internal/core/validation"
)

// ValidationService defines the primary port for data-quality checks.
type ValidationService interface {
	// Validate runs the rule set against a tree's effective tags.
	Validate(ctx context.Context, id int64) (*validation.Result, error)

	// Fix applies the suggested patch of the issue at index (errors, warnings, then todos).
	Fix(ctx context.Context, id int64, index int) (*validation.Issue, error)

	// FixAll applies every suggested patch of the tree and returns the applied issues.
	FixAll(ctx context.Context, id int64) ([]validation.Issue, error)
}

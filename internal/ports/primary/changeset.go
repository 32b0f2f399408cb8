package primary

import (
	"context"
	"io"

	"github.com/example/treewarden/internal/core/changeset"
)

// ChangesetService defines the primary port for export and upload payloads.
type ChangesetService interface {
	// ExportDiff writes the active bucket as an osmChange document.
	ExportDiff(ctx context.Context, w io.Writer) (*changeset.Report, error)

	// UploadPayload reconciles the active bucket against the loaded trees.
	UploadPayload(ctx context.Context) (*changeset.Payload, changeset.Report, error)
}

package primary

import "context"

// Upload stages, in protocol order.
const (
	StageIdle              = "idle"
	StageCreatingChangeset = "creating-changeset"
	StageUploadingChanges  = "uploading-changes"
	StageClosingChangeset  = "closing-changeset"
	StageComplete          = "complete"
	StageError             = "error"
)

// SubmitService defines the primary port for sending local edits upstream.
type SubmitService interface {
	// Submit uploads the active bucket as one changeset. Progress is reported
	// through onProgress (which may be nil) on the calling goroutine.
	Submit(ctx context.Context, onProgress func(Progress)) (*SubmitResult, error)
}

// Progress is one upload state transition.
type Progress struct {
	Stage        string
	Message      string
	ChangesetID  int64
	UploadResult string
	Error        string
}

// SubmitResult summarises a successful submit.
type SubmitResult struct {
	Reference   string // local attempt reference, also in logs
	ChangesetID int64
	Uploaded    []int64
	Discarded   []int64
}

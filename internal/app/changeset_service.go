package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/example/treewarden/internal/core/changeset"
	"github.com/example/treewarden/internal/core/osmxml"
	"github.com/example/treewarden/internal/core/patch"
	"github.com/example/treewarden/internal/ports/primary"
)

// ErrNothingToUpload is returned when the active bucket yields no payload.
var ErrNothingToUpload = errors.New("no changes to upload, please make some changes first")

// ErrNothingToExport is returned when the active bucket yields no diff document.
var ErrNothingToExport = errors.New("no changes to export")

// ChangesetServiceImpl implements the ChangesetService interface.
type ChangesetServiceImpl struct {
	store   *EntityStore
	patches primary.PatchService
	logger  *zap.SugaredLogger
}

// NewChangesetService creates a new ChangesetService with injected dependencies.
func NewChangesetService(store *EntityStore, patches primary.PatchService, logger *zap.SugaredLogger) *ChangesetServiceImpl {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &ChangesetServiceImpl{
		store:   store,
		patches: patches,
		logger:  logger,
	}
}

// ExportDiff writes the active bucket as an osmChange document.
func (s *ChangesetServiceImpl) ExportDiff(ctx context.Context, w io.Writer) (*changeset.Report, error) {
	payload, report, err := changeset.BuildDiff(s.patches.List(ctx, patch.BucketActive), s.store.Snapshot())
	if err != nil {
		return nil, err
	}
	s.logDiscarded(report)
	if payload == nil {
		return &report, ErrNothingToExport
	}

	data, err := osmxml.EncodeDiffDocument(payload)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write diff document: %w", err)
	}
	return &report, nil
}

// UploadPayload reconciles the active bucket against the loaded trees.
// A nil payload with nil error means there is nothing to upload.
func (s *ChangesetServiceImpl) UploadPayload(ctx context.Context) (*changeset.Payload, changeset.Report, error) {
	payload, report, err := changeset.BuildUpload(s.patches.List(ctx, patch.BucketActive), s.store.Snapshot())
	s.logDiscarded(report)
	return payload, report, err
}

func (s *ChangesetServiceImpl) logDiscarded(report changeset.Report) {
	if len(report.Discarded) > 0 {
		s.logger.Warnw("Skipping patches for trees that are not loaded", "ids", report.Discarded)
	}
}

// Ensure ChangesetServiceImpl implements the interface
var _ primary.ChangesetService = (*ChangesetServiceImpl)(nil)

package app

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/treewarden/internal/ports/primary"
)

// SubmitServiceImpl implements the SubmitService interface.
// It owns the patch lifecycle around an upload: included patches move to pending
// for the duration of the attempt and end up applied or back in active.
type SubmitServiceImpl struct {
	changesets   primary.ChangesetService
	patches      primary.PatchService
	fetch        primary.FetchService
	orchestrator *UploadOrchestrator
	logger       *zap.SugaredLogger
}

// NewSubmitService creates a new SubmitService with injected dependencies.
func NewSubmitService(changesets primary.ChangesetService, patches primary.PatchService, fetch primary.FetchService, orchestrator *UploadOrchestrator, logger *zap.SugaredLogger) *SubmitServiceImpl {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SubmitServiceImpl{
		changesets:   changesets,
		patches:      patches,
		fetch:        fetch,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Submit uploads the active bucket as one changeset.
func (s *SubmitServiceImpl) Submit(ctx context.Context, onProgress func(primary.Progress)) (*primary.SubmitResult, error) {
	payload, report, err := s.changesets.UploadPayload(ctx)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, ErrNothingToUpload
	}

	ref := uuid.NewString()
	log := s.logger.With("reference", ref)
	log.Infow("Starting upload", "included", len(report.Included), "discarded", len(report.Discarded))

	for _, id := range report.Included {
		if err := s.patches.MoveToPending(ctx, id); err != nil {
			s.restore(ctx, log, report.Included)
			return nil, err
		}
	}

	outcome, err := s.orchestrator.Run(ctx, payload, onProgress)
	if err != nil {
		s.restore(ctx, log, report.Included)
		return nil, err
	}

	for _, id := range report.Included {
		if err := s.patches.Apply(ctx, id); err != nil {
			log.Errorw("Uploaded patch could not be marked applied", "entity_id", id, "error", err)
		}
	}

	if _, err := s.fetch.Refresh(ctx); err != nil {
		log.Warnw("Refresh after upload failed", "error", err)
	} else {
		s.fetch.WaitIdle()
	}

	return &primary.SubmitResult{
		Reference:   ref,
		ChangesetID: outcome.ChangesetID,
		Uploaded:    report.Included,
		Discarded:   report.Discarded,
	}, nil
}

func (s *SubmitServiceImpl) restore(ctx context.Context, log *zap.SugaredLogger, ids []int64) {
	for _, id := range ids {
		if err := s.patches.Restore(ctx, id); err != nil {
			log.Errorw("Failed to restore patch after aborted upload", "entity_id", id, "error", err)
		}
	}
}

// Ensure SubmitServiceImpl implements the interface
var _ primary.SubmitService = (*SubmitServiceImpl)(nil)

package app

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/example/treewarden/internal/core/changeset"
	"github.com/example/treewarden/internal/ports/primary"
	"github.com/example/treewarden/internal/ports/secondary"
)

// Upload state machine events.
const (
	EventCreate   = "create"
	EventUpload   = "upload"
	EventClose    = "close"
	EventComplete = "complete"
	EventFail     = "fail"
)

// UploadOrchestrator drives the three-step changeset protocol:
// create, upload, close. It never touches the patch store.
type UploadOrchestrator struct {
	api    secondary.ChangesetAPI
	logger *zap.SugaredLogger
}

// NewUploadOrchestrator creates an orchestrator for api.
func NewUploadOrchestrator(api secondary.ChangesetAPI, logger *zap.SugaredLogger) *UploadOrchestrator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &UploadOrchestrator{api: api, logger: logger}
}

// UploadOutcome is the result of a completed run.
type UploadOutcome struct {
	ChangesetID  int64
	UploadResult string
}

// run tracks one protocol execution.
type run struct {
	machine    *fsm.FSM
	progress   primary.Progress
	onProgress func(primary.Progress)
}

func newUploadMachine(r *run) *fsm.FSM {
	steps := []string{primary.StageCreatingChangeset, primary.StageUploadingChanges, primary.StageClosingChangeset}
	return fsm.NewFSM(
		primary.StageIdle,
		fsm.Events{
			{Name: EventCreate, Src: []string{primary.StageIdle}, Dst: primary.StageCreatingChangeset},
			{Name: EventUpload, Src: []string{primary.StageCreatingChangeset}, Dst: primary.StageUploadingChanges},
			{Name: EventClose, Src: []string{primary.StageUploadingChanges}, Dst: primary.StageClosingChangeset},
			{Name: EventComplete, Src: []string{primary.StageClosingChangeset}, Dst: primary.StageComplete},
			{Name: EventFail, Src: steps, Dst: primary.StageError},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				r.progress.Stage = e.Dst
				if len(e.Args) > 0 {
					if msg, ok := e.Args[0].(string); ok {
						r.progress.Message = msg
					}
				}
				if r.onProgress != nil {
					r.onProgress(r.progress)
				}
			},
		},
	)
}

// Run uploads payload as one changeset. Every state change is reported to onProgress.
// Any failing step halts the run in the error stage; there are no retries.
func (o *UploadOrchestrator) Run(ctx context.Context, payload *changeset.Payload, onProgress func(primary.Progress)) (*UploadOutcome, error) {
	if payload.Len() == 0 {
		return nil, ErrNothingToUpload
	}

	r := &run{onProgress: onProgress}
	r.machine = newUploadMachine(r)

	if err := o.step(ctx, r, EventCreate, "Creating changeset..."); err != nil {
		return nil, err
	}
	id, err := o.api.CreateChangeset(ctx, changeset.ProvenanceTags())
	if err != nil {
		return nil, o.fail(ctx, r, "create changeset", err)
	}
	r.progress.ChangesetID = id

	if err := o.step(ctx, r, EventUpload, fmt.Sprintf("Uploading %d change(s) to changeset %d...", payload.Len(), id)); err != nil {
		return nil, err
	}
	result, err := o.api.UploadChanges(ctx, id, payload)
	if err != nil {
		return nil, o.fail(ctx, r, "upload changes", err)
	}
	r.progress.UploadResult = result

	if err := o.step(ctx, r, EventClose, fmt.Sprintf("Closing changeset %d...", id)); err != nil {
		return nil, err
	}
	if err := o.api.CloseChangeset(ctx, id); err != nil {
		return nil, o.fail(ctx, r, "close changeset", err)
	}

	if err := o.step(ctx, r, EventComplete, fmt.Sprintf("Changeset %d uploaded", id)); err != nil {
		return nil, err
	}
	o.logger.Infow("Upload complete", "changeset_id", id, "nodes", payload.Len())
	return &UploadOutcome{ChangesetID: id, UploadResult: result}, nil
}

func (o *UploadOrchestrator) step(ctx context.Context, r *run, event, message string) error {
	if err := r.machine.Event(ctx, event, message); err != nil {
		return fmt.Errorf("upload state machine rejected %s in %s: %w", event, r.machine.Current(), err)
	}
	return nil
}

func (o *UploadOrchestrator) fail(ctx context.Context, r *run, what string, cause error) error {
	r.progress.Error = cause.Error()
	o.logger.Warnw("Upload step failed", "step", what, "changeset_id", r.progress.ChangesetID, "error", cause)
	if err := r.machine.Event(ctx, EventFail, cause.Error()); err != nil {
		o.logger.Errorw("Could not enter error stage", "error", err)
	}
	return fmt.Errorf("failed to %s: %w", what, cause)
}

package app

import (
	"context"
	"fmt"

	"github.com/example/treewarden/internal/core/patch"
	"github.com/example/treewarden/internal/core/validation"
	"github.com/example/treewarden/internal/ports/primary"
)

// maxFixPasses bounds FixAll; each pass can surface issues the previous fix uncovered.
const maxFixPasses = 5

// ValidationServiceImpl implements the ValidationService interface.
type ValidationServiceImpl struct {
	store   *EntityStore
	patches primary.PatchService
	engine  *validation.Engine
}

// NewValidationService creates a new ValidationService with injected dependencies.
func NewValidationService(store *EntityStore, patches primary.PatchService, engine *validation.Engine) *ValidationServiceImpl {
	return &ValidationServiceImpl{
		store:   store,
		patches: patches,
		engine:  engine,
	}
}

// Validate runs the rule set against a tree's effective tags.
func (s *ValidationServiceImpl) Validate(ctx context.Context, id int64) (*validation.Result, error) {
	in, _, err := s.input(ctx, id)
	if err != nil {
		return nil, err
	}
	res := s.engine.Validate(in)
	return &res, nil
}

// Fix applies the suggested patch of the issue at index (errors, warnings, then todos).
func (s *ValidationServiceImpl) Fix(ctx context.Context, id int64, index int) (*validation.Issue, error) {
	in, version, err := s.input(ctx, id)
	if err != nil {
		return nil, err
	}
	issues := s.engine.Validate(in).All()
	if index < 0 || index >= len(issues) {
		return nil, fmt.Errorf("tree %d has no issue #%d (%d issues)", id, index, len(issues))
	}
	issue := issues[index]
	if !issue.HasFix() {
		return nil, fmt.Errorf("issue #%d has no suggested fix: %s", index, issue.Message)
	}

	if _, err := s.patches.AddOrUpdate(ctx, primary.AddPatchRequest{
		EntityID:    id,
		BaseVersion: version,
		Changes:     issue.Changes(),
	}); err != nil {
		return nil, err
	}
	return &issue, nil
}

// FixAll applies every suggested patch and re-validates until nothing fixable is left.
// Within one pass the first issue touching a key wins.
func (s *ValidationServiceImpl) FixAll(ctx context.Context, id int64) ([]validation.Issue, error) {
	var applied []validation.Issue
	for pass := 0; pass < maxFixPasses; pass++ {
		in, version, err := s.input(ctx, id)
		if err != nil {
			return applied, err
		}

		changes := make(map[string]string)
		var fixed []validation.Issue
		for _, issue := range s.engine.Validate(in).All() {
			if !issue.HasFix() || !changesSomething(in.Tags, issue) || touchesAny(changes, issue) {
				continue
			}
			for k, v := range issue.Changes() {
				changes[k] = v
			}
			fixed = append(fixed, issue)
		}
		if len(changes) == 0 {
			break
		}

		if _, err := s.patches.AddOrUpdate(ctx, primary.AddPatchRequest{
			EntityID:    id,
			BaseVersion: version,
			Changes:     changes,
		}); err != nil {
			return applied, err
		}
		applied = append(applied, fixed...)
	}
	return applied, nil
}

func (s *ValidationServiceImpl) input(ctx context.Context, id int64) (validation.Input, int, error) {
	tree, effective, ok := s.store.EffectiveTree(id, s.patches.List(ctx, patch.BucketActive))
	if !ok {
		return validation.Input{}, 0, fmt.Errorf("%w: %d", ErrTreeNotFound, id)
	}
	return validation.Input{
		Tags:     effective,
		Point:    tree.Point(),
		Orchards: s.store.Orchards.Get(),
	}, tree.Version, nil
}

func changesSomething(tags map[string]string, issue validation.Issue) bool {
	for _, kv := range issue.Patch {
		if tags[kv.Key] != kv.Value {
			return true
		}
	}
	return false
}

func touchesAny(changes map[string]string, issue validation.Issue) bool {
	for _, kv := range issue.Patch {
		if _, ok := changes[kv.Key]; ok {
			return true
		}
	}
	return false
}

// Ensure ValidationServiceImpl implements the interface
var _ primary.ValidationService = (*ValidationServiceImpl)(nil)

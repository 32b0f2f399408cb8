package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/example/treewarden/internal/core/patch"
	"github.com/example/treewarden/internal/ports/primary"
)

// PatchAdapter translates CLI operations to PatchService calls.
type PatchAdapter struct {
	service primary.PatchService
	out     io.Writer
}

// NewPatchAdapter creates a new PatchAdapter with the given service.
func NewPatchAdapter(service primary.PatchService, out io.Writer) *PatchAdapter {
	return &PatchAdapter{
		service: service,
		out:     out,
	}
}

// Edit records tag changes on a tree.
func (a *PatchAdapter) Edit(ctx context.Context, req primary.AddPatchRequest) error {
	p, err := a.service.AddOrUpdate(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Tree %d now has %d pending change(s)\n", p.EntityID, len(p.Changes))
	return nil
}

// Unset drops one key from a tree's active patch.
func (a *PatchAdapter) Unset(ctx context.Context, id int64, key string) error {
	if err := a.service.RemoveKey(ctx, id, key); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Dropped change %q on tree %d\n", key, id)
	return nil
}

// List prints the patches of one bucket.
func (a *PatchAdapter) List(ctx context.Context, bucket patch.Bucket) error {
	set := a.service.List(ctx, bucket)
	if len(set) == 0 {
		fmt.Fprintf(a.out, "No %s patches\n", bucket)
		return nil
	}

	fmt.Fprintf(a.out, "\n%d %s patch(es):\n\n", len(set), bucket)
	for _, id := range set.IDs() {
		p := set[id]
		header := fmt.Sprintf("Tree %d", id)
		if p.IsNew() {
			header += fmt.Sprintf(" (new at %.7f, %.7f)", p.Lat, p.Lon)
		} else {
			header += fmt.Sprintf(" (v%d)", p.BaseVersion)
		}
		if p.Username != "" {
			header += " by " + p.Username
		}
		fmt.Fprintln(a.out, header)
		for _, k := range p.SortedKeys() {
			v := p.Changes[k]
			if strings.TrimSpace(v) == "" {
				fmt.Fprintf(a.out, "  - %s\n", k)
				continue
			}
			fmt.Fprintf(a.out, "  %s=%s\n", k, v)
		}
	}
	fmt.Fprintln(a.out)
	return nil
}

// Counts prints how many patches each bucket holds.
func (a *PatchAdapter) Counts(ctx context.Context) {
	counts := a.service.Counts(ctx)
	parts := make([]string, 0, len(patch.Buckets))
	for _, b := range patch.Buckets {
		parts = append(parts, fmt.Sprintf("%s %d", b, counts[b]))
	}
	fmt.Fprintf(a.out, "Patches:  %s\n", strings.Join(parts, ", "))
}

// Remove deletes the active patch of a tree.
func (a *PatchAdapter) Remove(ctx context.Context, id int64) error {
	if err := a.service.Remove(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Discarded changes to tree %d\n", id)
	return nil
}

// Restore moves a pending patch back to active after an interrupted upload.
func (a *PatchAdapter) Restore(ctx context.Context, id int64) error {
	if err := a.service.Restore(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Restored pending changes of tree %d\n", id)
	return nil
}

// Clear empties one bucket, or every bucket when bucket is empty.
func (a *PatchAdapter) Clear(ctx context.Context, bucket patch.Bucket) error {
	if bucket == "" {
		if err := a.service.ClearAll(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "✓ Cleared all patches")
		return nil
	}
	if err := a.service.Clear(ctx, bucket); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Cleared %s patches\n", bucket)
	return nil
}

// Import merges an osmChange document into the active patches.
func (a *PatchAdapter) Import(ctx context.Context, r io.Reader) error {
	res, err := a.service.ImportDiffDocument(ctx, r)
	if err != nil {
		return fmt.Errorf("failed to import: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Imported changes for %d tree(s)\n", len(res.Imported))
	if len(res.Skipped) > 0 {
		fmt.Fprintf(a.out, "  skipped %s (deleted or mid-upload)\n", joinIDs(res.Skipped))
	}
	return nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}

// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting but delegate
// business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/example/treewarden/internal/core/validation"
	"github.com/example/treewarden/internal/ports/primary"
)

// TreeAdapter translates CLI operations to TreeService and ValidationService calls.
type TreeAdapter struct {
	trees      primary.TreeService
	validation primary.ValidationService
	out        io.Writer
}

// NewTreeAdapter creates a new TreeAdapter with the given services.
func NewTreeAdapter(trees primary.TreeService, validation primary.ValidationService, out io.Writer) *TreeAdapter {
	return &TreeAdapter{
		trees:      trees,
		validation: validation,
		out:        out,
	}
}

// List prints the loaded trees.
func (a *TreeAdapter) List(ctx context.Context, filters primary.TreeFilters) error {
	views, err := a.trees.ListTrees(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list trees: %w", err)
	}

	if len(views) == 0 {
		fmt.Fprintln(a.out, "No trees loaded (run 'treewarden view' first)")
		return nil
	}

	showIssues := filters.WithIssues || filters.OnlyWithIssues
	if showIssues {
		fmt.Fprintf(a.out, "\n%-12s %-8s %-8s %-8s %s\n", "ID", "VERSION", "STATE", "ISSUES", "NAME")
	} else {
		fmt.Fprintf(a.out, "\n%-12s %-8s %-8s %s\n", "ID", "VERSION", "STATE", "NAME")
	}
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, v := range views {
		if showIssues {
			fmt.Fprintf(a.out, "%-12d %-8d %-8s %-8s %s\n", v.Tree.ID, v.Tree.Version, state(v), issueSummary(v.Issues), v.Name)
		} else {
			fmt.Fprintf(a.out, "%-12d %-8d %-8s %s\n", v.Tree.ID, v.Tree.Version, state(v), v.Name)
		}
	}
	fmt.Fprintln(a.out)
	return nil
}

// Show prints a tree with its effective tags and numbered issues.
func (a *TreeAdapter) Show(ctx context.Context, id int64) error {
	v, err := a.trees.GetTree(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\nTree:     %d (%s)\n", v.Tree.ID, v.Name)
	fmt.Fprintf(a.out, "Location: %.7f, %.7f\n", v.Tree.Lat, v.Tree.Lon)
	if v.Tree.IsLocal() {
		fmt.Fprintln(a.out, "Version:  new")
	} else {
		fmt.Fprintf(a.out, "Version:  %d\n", v.Tree.Version)
	}
	if s := state(v); s != "" {
		fmt.Fprintf(a.out, "State:    %s\n", s)
	}

	fmt.Fprintln(a.out, "\nTags:")
	keys := make([]string, 0, len(v.Effective))
	for k := range v.Effective {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		marker := " "
		if v.Tree.Tags[k] != v.Effective[k] {
			marker = color.New(color.FgYellow).Sprint("*")
		}
		fmt.Fprintf(a.out, " %s %s=%s\n", marker, k, v.Effective[k])
	}

	if v.Issues != nil {
		a.printIssues(v.Issues.All())
	}
	fmt.Fprintln(a.out)
	return nil
}

// Add places a new tree and prints its local id.
func (a *TreeAdapter) Add(ctx context.Context, req primary.AddTreeRequest) error {
	v, err := a.trees.AddTree(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Placed tree %d (%s) at %.7f, %.7f\n", v.Tree.ID, v.Name, v.Tree.Lat, v.Tree.Lon)
	return nil
}

// Fix applies one suggested patch.
func (a *TreeAdapter) Fix(ctx context.Context, id int64, index int) error {
	issue, err := a.validation.Fix(ctx, id, index)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Fixed tree %d: %s\n", id, issue.Message)
	printChanges(a.out, issue)
	return nil
}

// FixAll applies every suggested patch of a tree.
func (a *TreeAdapter) FixAll(ctx context.Context, id int64) error {
	applied, err := a.validation.FixAll(ctx, id)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintf(a.out, "Nothing to fix on tree %d\n", id)
		return nil
	}
	fmt.Fprintf(a.out, "✓ Applied %d fix(es) to tree %d\n", len(applied), id)
	for _, issue := range applied {
		fmt.Fprintf(a.out, "  %s %s\n", severityLabel(issue.Severity), issue.Message)
	}
	return nil
}

func (a *TreeAdapter) printIssues(issues []validation.Issue) {
	if len(issues) == 0 {
		fmt.Fprintln(a.out, "\nIssues: none")
		return
	}
	fmt.Fprintln(a.out, "\nIssues:")
	for i, issue := range issues {
		fix := ""
		if issue.HasFix() {
			fix = color.New(color.FgHiBlack).Sprint(" [fixable]")
		}
		fmt.Fprintf(a.out, "  #%d %s %s%s\n", i, severityLabel(issue.Severity), issue.Message, fix)
	}
}

func printChanges(out io.Writer, issue *validation.Issue) {
	for _, kv := range issue.Patch {
		fmt.Fprintf(out, "  %s=%s\n", kv.Key, kv.Value)
	}
}

func severityLabel(s validation.Severity) string {
	switch s {
	case validation.SeverityError:
		return color.New(color.FgRed).Sprint("[error]")
	case validation.SeverityWarning:
		return color.New(color.FgYellow).Sprint("[warning]")
	default:
		return color.New(color.FgCyan).Sprint("[todo]")
	}
}

func state(v *primary.TreeView) string {
	switch {
	case v.Pending:
		return "pending"
	case v.Tree.IsLocal():
		return "new"
	case v.Patched:
		return "patched"
	default:
		return ""
	}
}

func issueSummary(r *validation.Result) string {
	if r == nil || r.Empty() {
		return "-"
	}
	return fmt.Sprintf("%d/%d/%d", len(r.Errors), len(r.Warnings), len(r.Todos))
}

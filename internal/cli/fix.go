package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/treewarden/internal/wire"
)

// FixCmd returns the fix command.
func FixCmd() *cobra.Command {
	var (
		all   bool
		index int
	)

	cmd := &cobra.Command{
		Use:   "fix <id>",
		Short: "Apply suggested fixes to a tree",
		Long: `Apply the patch suggested by a validation issue.

Without flags the tree and its numbered issues are shown. --index applies one
issue; --all applies every fixable issue until none is left.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := loadTrees(ctx); err != nil {
				return err
			}

			adapter := wire.TreeAdapter()
			switch {
			case all:
				return adapter.FixAll(ctx, id)
			case cmd.Flags().Changed("index"):
				return adapter.Fix(ctx, id, index)
			default:
				return adapter.Show(ctx, id)
			}
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Apply every suggested fix")
	cmd.Flags().IntVar(&index, "index", 0, "Apply the fix of issue #N")
	cmd.MarkFlagsMutuallyExclusive("all", "index")
	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/treewarden/internal/ports/primary"
	"github.com/example/treewarden/internal/wire"
)

// EditCmd returns the edit command.
func EditCmd() *cobra.Command {
	var unset []string

	cmd := &cobra.Command{
		Use:   "edit <id> [key=value...]",
		Short: "Change tags of a tree",
		Long: `Record tag changes on a tree. Changes stay local until 'treewarden upload'.

A key with an empty value (key=) removes the tag upstream; --unset drops a
local change without touching the tree.`,
		Example: `  treewarden edit 1234 species="Malus domestica" height=5
  treewarden edit 1234 --unset height`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			changes, err := parseTags(args[1:])
			if err != nil {
				return err
			}
			if len(changes) == 0 && len(unset) == 0 {
				return fmt.Errorf("nothing to change: pass key=value pairs or --unset")
			}

			adapter := wire.PatchAdapter()
			for _, key := range unset {
				if err := adapter.Unset(ctx, id, key); err != nil {
					return err
				}
			}
			if len(changes) == 0 {
				return nil
			}

			req := primary.AddPatchRequest{EntityID: id, Changes: changes}
			if id > 0 {
				if _, err := loadTrees(ctx); err != nil {
					return err
				}
				view, err := wire.TreeService().GetTree(ctx, id)
				if err != nil {
					return err
				}
				req.BaseVersion = view.Tree.Version
			}
			return adapter.Edit(ctx, req)
		},
	}

	cmd.Flags().StringArrayVar(&unset, "unset", nil, "Drop the local change of a key (repeatable)")
	return cmd
}

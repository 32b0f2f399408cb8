package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/treewarden/internal/core/entity"
	"github.com/example/treewarden/internal/ports/primary"
	"github.com/example/treewarden/internal/wire"
)

var treesCmd = &cobra.Command{
	Use:   "trees",
	Short: "List, inspect and place trees",
}

var treesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the trees of the working area",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		patched, _ := cmd.Flags().GetBool("patched")
		issues, _ := cmd.Flags().GetBool("issues")
		onlyIssues, _ := cmd.Flags().GetBool("only-issues")
		genus, _ := cmd.Flags().GetString("genus")

		if _, err := loadTrees(ctx); err != nil {
			return err
		}
		return wire.TreeAdapter().List(ctx, primary.TreeFilters{
			OnlyPatched:    patched,
			OnlyWithIssues: onlyIssues,
			WithIssues:     issues,
			Genus:          genus,
		})
	},
}

var treesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a tree with its pending changes and issues",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if id > 0 {
			if _, err := loadTrees(ctx); err != nil {
				return err
			}
		}
		return wire.TreeAdapter().Show(ctx, id)
	},
}

var treesAddCmd = &cobra.Command{
	Use:   "add <lat> <lon>",
	Short: "Place a new tree",
	Long: fmt.Sprintf(`Place a new tree at a location. It is uploaded with the next 'treewarden upload'.

Types: %s`, strings.Join(entity.TreeTypeNames(), ", ")),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		treeType, _ := cmd.Flags().GetString("type")
		tagArgs, _ := cmd.Flags().GetStringArray("tag")

		lat, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid latitude %q", args[0])
		}
		lon, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid longitude %q", args[1])
		}
		tags, err := parseTags(tagArgs)
		if err != nil {
			return err
		}

		return wire.TreeAdapter().Add(ctx, primary.AddTreeRequest{Lat: lat, Lon: lon, Type: treeType, Tags: tags})
	},
}

// TreesCmd returns the trees command with all subcommands attached.
func TreesCmd() *cobra.Command {
	treesListCmd.Flags().Bool("patched", false, "Only trees with local changes")
	treesListCmd.Flags().Bool("issues", false, "Show issue counts (errors/warnings/todos)")
	treesListCmd.Flags().Bool("only-issues", false, "Only trees with issues")
	treesListCmd.Flags().String("genus", "", "Only trees of this genus")

	treesAddCmd.Flags().StringP("type", "t", "tree", "Tree type")
	treesAddCmd.Flags().StringArray("tag", nil, "Extra tag as key=value (repeatable)")

	treesCmd.AddCommand(treesListCmd)
	treesCmd.AddCommand(treesShowCmd)
	treesCmd.AddCommand(treesAddCmd)

	return treesCmd
}

package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/treewarden/internal/config"
	"github.com/example/treewarden/internal/core/bounds"
	"github.com/example/treewarden/internal/ports/primary"
	"github.com/example/treewarden/internal/wire"
)

var viewCmd = &cobra.Command{
	Use:   "view <south,west,north,east>",
	Short: "Load the trees of an area",
	Long: `Fetch the trees and orchards of an area and remember it as the working area.

Later commands (trees, edit, fix, export, upload) reload this area. Below the
fruit-tree zoom threshold only fruit genera are fetched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		zoom, _ := cmd.Flags().GetInt("zoom")
		force, _ := cmd.Flags().GetBool("force")

		box, err := bounds.Parse(args[0])
		if err != nil {
			return err
		}

		cfg := wire.Config()
		cfg.Viewport = &config.Viewport{Bounds: box.String(), Zoom: zoom}
		if err := wire.SaveConfig(); err != nil {
			return err
		}

		fetch := wire.FetchService()
		outcome, err := fetch.Request(ctx, primary.FetchRequest{Bounds: box, Zoom: zoom, Force: force})
		if err != nil {
			return fmt.Errorf("failed to fetch trees: %w", err)
		}
		fetch.WaitIdle()

		if outcome.Skipped {
			fmt.Println("Area barely changed; nothing fetched")
			return nil
		}

		filter := ""
		if outcome.Filtered {
			filter = " (fruit genera only)"
		}
		fmt.Printf("✓ Loaded %d trees%s in %s\n", outcome.TreeCount, filter, outcome.QueryBounds)

		status := wire.Store().Status()
		if status.OrchardError != "" {
			fmt.Printf("  %s orchards unavailable: %s\n", color.New(color.FgYellow).Sprint("!"), status.OrchardError)
		} else {
			fmt.Printf("  %d orchards\n", status.OrchardCount)
		}
		return nil
	},
}

// ViewCmd returns the view command.
func ViewCmd() *cobra.Command {
	viewCmd.Flags().Int("zoom", 0, "Map zoom level (0 = unknown, fetch every tree)")
	viewCmd.Flags().Bool("force", false, "Fetch even when the area barely changed")
	return viewCmd
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

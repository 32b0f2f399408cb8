package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/treewarden/internal/config"
	"github.com/example/treewarden/internal/version"
	"github.com/example/treewarden/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the working area, account and local changes",
		Long: `Display the TreeWarden state:
- The working area stored by 'treewarden view'
- The configured OSM account and endpoints
- Local changes per bucket

With --refresh the working area is fetched and the store state shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			cfg := wire.Config()

			fmt.Println("TreeWarden Status")
			fmt.Println()

			build := version.Current()
			fmt.Printf("Build:    %s (%s)\n", build.ShortCommit(), build.BuildTime)

			if cfg.Viewport != nil {
				zoom := "unknown"
				if cfg.Viewport.Zoom > 0 {
					zoom = fmt.Sprint(cfg.Viewport.Zoom)
				}
				fmt.Printf("Area:     %s (zoom %s)\n", cfg.Viewport.Bounds, zoom)
			} else {
				fmt.Println("Area:     none (run 'treewarden view')")
			}

			account := color.New(color.FgYellow).Sprint("no token")
			if cfg.AccessToken != "" {
				account = "token set"
				if cfg.Username != "" {
					account = fmt.Sprintf("%s (%s)", cfg.Username, account)
				}
			}
			fmt.Printf("Account:  %s\n", account)
			if cfg.OSMAPIURL != config.DefaultOSMAPIURL {
				fmt.Printf("OSM API:  %s\n", cfg.OSMAPIURL)
			}
			if cfg.OverpassURL != config.DefaultOverpassURL {
				fmt.Printf("Overpass: %s\n", cfg.OverpassURL)
			}

			wire.PatchAdapter().Counts(ctx)

			if !refresh {
				return nil
			}
			if _, err := loadTrees(ctx); err != nil {
				// Transport failures are part of the state being shown.
				fmt.Printf("Fetch:    %s\n", color.New(color.FgRed).Sprint(err))
			}

			status := wire.Store().Status()
			fmt.Println()
			fmt.Printf("Trees:    %d loaded, %d placed locally (updated %s)\n", status.TreeCount, status.LocalTreeCount, formatTime(status.LastUpdated))
			fmt.Printf("Orchards: %d (updated %s)\n", status.OrchardCount, formatTime(status.OrchardsUpdated))
			if status.LastBounds != nil {
				fmt.Printf("Fetched:  %s\n", status.LastBounds)
			}
			if status.OrchardError != "" {
				fmt.Printf("Orchard error: %s\n", color.New(color.FgYellow).Sprint(status.OrchardError))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch the working area and show the store state")
	return cmd
}

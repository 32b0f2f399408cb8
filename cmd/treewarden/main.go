package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/treewarden/internal/cli"
	"github.com/example/treewarden/internal/db"
	"github.com/example/treewarden/internal/logger"
	"github.com/example/treewarden/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "treewarden",
		Short:   "TreeWarden - curate OpenStreetMap fruit trees",
		Version: version.String(),
		Long: `TreeWarden loads the trees of an area from OpenStreetMap, checks their tags,
records corrections locally and uploads them as a changeset.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Working area
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.ViewCmd())
	rootCmd.AddCommand(cli.StatusCmd())

	// Editing
	rootCmd.AddCommand(cli.TreesCmd())
	rootCmd.AddCommand(cli.EditCmd())
	rootCmd.AddCommand(cli.FixCmd())
	rootCmd.AddCommand(cli.PatchesCmd())

	// Exchange
	rootCmd.AddCommand(cli.ExportCmd())
	rootCmd.AddCommand(cli.ImportCmd())
	rootCmd.AddCommand(cli.UploadCmd())
	rootCmd.AddCommand(cli.LoginCmd())
	rootCmd.AddCommand(cli.LogCmd())

	err := rootCmd.Execute()
	_ = logger.Sync()
	_ = db.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/treewarden/internal/app"
	"github.com/example/treewarden/internal/wire"
)

// ExportCmd returns the export command.
func ExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the active changes as an osmChange document",
		Long: `Write the active changes as an osmChange (.osc) document, to a file or stdout.
The document can be opened in JOSM or loaded again with 'treewarden import'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			if _, err := loadTrees(ctx); err != nil {
				return err
			}

			var buf bytes.Buffer
			report, err := wire.ChangesetService().ExportDiff(ctx, &buf)
			if errors.Is(err, app.ErrNothingToExport) {
				fmt.Fprintln(os.Stderr, "Nothing to export")
				return nil
			}
			if err != nil {
				return err
			}

			if len(args) == 0 {
				if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
					return err
				}
			} else if err := os.WriteFile(args[0], buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[0], err)
			}

			if len(report.Discarded) > 0 {
				fmt.Fprintf(os.Stderr, "Skipped %d tree(s) outside the working area\n", len(report.Discarded))
			}
			if len(args) == 1 {
				fmt.Printf("✓ Exported %d tree(s) to %s\n", len(report.Included), args[0])
			}
			return nil
		},
	}
}

// ImportCmd returns the import command.
func ImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge an osmChange document into the active changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			return wire.PatchAdapter().Import(NewContext(), f)
		},
	}
}

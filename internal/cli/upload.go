package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/treewarden/internal/app"
	"github.com/example/treewarden/internal/ports/primary"
	"github.com/example/treewarden/internal/wire"
)

// UploadCmd returns the upload command.
func UploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: "Upload the active changes to OpenStreetMap",
		Long: `Upload the active changes as one changeset: create the changeset, upload the
changes, close it. On failure the changes return to the active bucket.

Needs an access token (treewarden login --token, or TREEWARDEN_OSM_TOKEN).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := NewContext()
			if _, err := loadTrees(ctx); err != nil {
				return err
			}

			result, err := wire.SubmitService().Submit(ctx, printProgress)
			if errors.Is(err, app.ErrNothingToUpload) {
				fmt.Println("Nothing to upload: make some changes first")
				return nil
			}
			if err != nil {
				return fmt.Errorf("upload failed, changes kept for retry: %w", err)
			}

			fmt.Printf("✓ Uploaded %d tree(s) in changeset %d\n", len(result.Uploaded), result.ChangesetID)
			if len(result.Discarded) > 0 {
				fmt.Printf("  %d change(s) outside the working area were not uploaded\n", len(result.Discarded))
			}
			fmt.Printf("  reference %s\n", result.Reference)
			return nil
		},
	}
}

func printProgress(p primary.Progress) {
	switch p.Stage {
	case primary.StageError:
		fmt.Printf("  %s %s\n", color.New(color.FgRed).Sprint("✗"), p.Error)
	case primary.StageComplete:
		fmt.Printf("  %s %s\n", color.New(color.FgGreen).Sprint("✓"), p.Message)
	default:
		fmt.Printf("  %s %s\n", color.New(color.FgHiBlack).Sprint("…"), p.Message)
	}
}

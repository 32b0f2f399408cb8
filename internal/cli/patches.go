package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/treewarden/internal/core/patch"
	"github.com/example/treewarden/internal/wire"
)

var patchesCmd = &cobra.Command{
	Use:   "patches",
	Short: "Manage local changes",
	Long: `Manage local changes. Changes live in three buckets:
  active   edits not uploaded yet
  pending  edits of an upload in progress
  applied  edits accepted upstream`,
}

var patchesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the changes of a bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("bucket")
		bucket, err := patch.ParseBucket(name)
		if err != nil {
			return err
		}
		return wire.PatchAdapter().List(NewContext(), bucket)
	},
}

var patchesRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Discard the active changes of a tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return wire.PatchAdapter().Remove(NewContext(), id)
	},
}

var patchesRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Move the pending changes of a tree back to active",
	Long:  "Move the pending changes of a tree back to active, e.g. after an upload was interrupted.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return wire.PatchAdapter().Restore(NewContext(), id)
	},
}

var patchesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty a bucket (all buckets without --bucket)",
	RunE: func(cmd *cobra.Command, args []string) error {
		var bucket patch.Bucket
		if name, _ := cmd.Flags().GetString("bucket"); name != "" {
			b, err := patch.ParseBucket(name)
			if err != nil {
				return err
			}
			bucket = b
		}
		return wire.PatchAdapter().Clear(NewContext(), bucket)
	},
}

// PatchesCmd returns the patches command with all subcommands attached.
func PatchesCmd() *cobra.Command {
	patchesListCmd.Flags().StringP("bucket", "b", string(patch.BucketActive), "Bucket: active, pending or applied")
	patchesClearCmd.Flags().StringP("bucket", "b", "", "Bucket: active, pending or applied")

	patchesCmd.AddCommand(patchesListCmd)
	patchesCmd.AddCommand(patchesRemoveCmd)
	patchesCmd.AddCommand(patchesRestoreCmd)
	patchesCmd.AddCommand(patchesClearCmd)

	return patchesCmd
}

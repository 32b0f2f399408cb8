package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/treewarden/internal/app"
	"github.com/example/treewarden/internal/ports/primary"
	"github.com/example/treewarden/internal/wire"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the edit log",
	Long:  "View and prune the local edit log (every recorded change and bucket transition)",
}

var logShowCmd = &cobra.Command{
	Use:   "show [tree-id]",
	Short: "Show recent edits",
	Long:  "Show recent edits, newest first, optionally for a single tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		limit, _ := cmd.Flags().GetInt("limit")
		action, _ := cmd.Flags().GetString("action")

		filters := primary.LogFilters{
			Action: action,
			Limit:  limit,
		}
		if len(args) > 0 {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			filters.EntityID = &id
		}

		entries, err := wire.LogService().ListLogs(ctx, filters)
		if err != nil {
			return fmt.Errorf("failed to fetch logs: %w", err)
		}

		printLogEntries(entries)
		return nil
	},
}

var logPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old log entries",
	Long:  "Delete log entries older than the specified number of days (default 30)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		days, _ := cmd.Flags().GetInt("days")

		count, err := wire.LogService().PruneLogs(ctx, days)
		if err != nil {
			return fmt.Errorf("failed to prune logs: %w", err)
		}

		if count == 0 {
			fmt.Printf("No log entries older than %d days found.\n", days)
		} else {
			fmt.Printf("Pruned %d log entries older than %d days.\n", count, days)
		}
		return nil
	},
}

func printLogEntries(entries []*primary.LogEntry) {
	if len(entries) == 0 {
		fmt.Println("No log entries found.")
		return
	}

	fmt.Printf("Found %d log entries:\n\n", len(entries))
	for _, entry := range entries {
		printLogEntry(entry)
	}
}

func printLogEntry(entry *primary.LogEntry) {
	actor := entry.Actor
	if actor == "" {
		actor = "-"
	}

	fmt.Printf("%s | %-12s | %s %-15s | %d",
		formatTimestamp(entry.CreatedAt),
		actor,
		getActionIcon(entry.Action),
		entry.Action,
		entry.EntityID,
	)

	if entry.FieldName != "" {
		fmt.Printf(" | %s: %q -> %q", entry.FieldName, entry.OldValue, entry.NewValue)
	}

	fmt.Println()
}

func getActionIcon(action string) string {
	switch action {
	case app.ActionSet, app.ActionImport:
		return "~"
	case app.ActionUnset, app.ActionRemove, app.ActionClear:
		return "-"
	case app.ActionMoveToPending:
		return ">"
	case app.ActionApply:
		return "+"
	case app.ActionRestore:
		return "<"
	default:
		return "?"
	}
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// LogCmd returns the log command with all subcommands attached.
func LogCmd() *cobra.Command {
	// log show
	logShowCmd.Flags().IntP("limit", "n", 50, "Maximum entries to show")
	logShowCmd.Flags().String("action", "", "Filter by action (set, unset, remove, apply, ...)")

	// log prune
	logPruneCmd.Flags().Int("days", 30, "Delete entries older than N days")

	logCmd.AddCommand(logShowCmd)
	logCmd.AddCommand(logPruneCmd)

	return logCmd
}

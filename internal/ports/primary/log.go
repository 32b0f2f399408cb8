package primary

import "context"

// LogService defines the primary port for reading the edit log.
type LogService interface {
	// ListLogs retrieves log entries matching the given filters.
	ListLogs(ctx context.Context, filters LogFilters) ([]*LogEntry, error)

	// PruneLogs deletes log entries older than the specified number of days.
	PruneLogs(ctx context.Context, olderThanDays int) (int, error)
}

// LogEntry represents an edit log entry at the port boundary.
type LogEntry struct {
	ID        string
	EntityID  int64
	Action    string
	FieldName string
	OldValue  string
	NewValue  string
	Actor     string
	CreatedAt string
}

// LogFilters contains filter options for querying logs.
type LogFilters struct {
	EntityID *int64
	Action   string
	Limit    int
}

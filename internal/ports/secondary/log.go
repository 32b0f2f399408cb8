package secondary

import "context"

// EditLogWriter defines the interface for writing audit entries for patch store mutations.
// Implementations extract the actor from context.
type EditLogWriter interface {
	// LogEdit records one mutation. ID and CreatedAt are filled by the implementation.
	LogEdit(ctx context.Context, entry *EditLogRecord) error
}

// EditLogRepository reads and prunes the edit log.
type EditLogRepository interface {
	EditLogWriter

	// List retrieves entries matching the filters, newest first.
	List(ctx context.Context, filters EditLogFilters) ([]*EditLogRecord, error)

	// Prune deletes entries older than the given number of days.
	Prune(ctx context.Context, olderThanDays int) (int, error)
}

// EditLogRecord represents an edit log entry as stored in persistence.
type EditLogRecord struct {
	ID        string
	EntityID  int64
	Action    string // 'set', 'unset', 'remove', 'move-to-pending', 'apply', 'restore', 'clear', 'import'
	FieldName string // for key-level actions only
	OldValue  string
	NewValue  string
	Actor     string
	CreatedAt string
}

// EditLogFilters contains filter options for querying the edit log.
type EditLogFilters struct {
	EntityID *int64
	Action   string
	Limit    int
}

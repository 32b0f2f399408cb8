package app

import (
	"context"
	"fmt"

	"github.com/example/treewarden/internal/ports/primary"
	"github.com/example/treewarden/internal/ports/secondary"
)

// LogServiceImpl implements the LogService interface.
type LogServiceImpl struct {
	logRepo secondary.EditLogRepository
}

// NewLogService creates a new LogService with injected dependencies.
func NewLogService(logRepo secondary.EditLogRepository) *LogServiceImpl {
	return &LogServiceImpl{
		logRepo: logRepo,
	}
}

// ListLogs retrieves log entries matching the given filters.
func (s *LogServiceImpl) ListLogs(ctx context.Context, filters primary.LogFilters) ([]*primary.LogEntry, error) {
	records, err := s.logRepo.List(ctx, secondary.EditLogFilters{
		EntityID: filters.EntityID,
		Action:   filters.Action,
		Limit:    filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	entries := make([]*primary.LogEntry, len(records))
	for i, r := range records {
		entries[i] = s.recordToLogEntry(r)
	}
	return entries, nil
}

// PruneLogs deletes log entries older than the specified number of days.
func (s *LogServiceImpl) PruneLogs(ctx context.Context, olderThanDays int) (int, error) {
	if olderThanDays < 0 {
		return 0, fmt.Errorf("days must not be negative, got %d", olderThanDays)
	}
	return s.logRepo.Prune(ctx, olderThanDays)
}

// Helper methods

func (s *LogServiceImpl) recordToLogEntry(r *secondary.EditLogRecord) *primary.LogEntry {
	return &primary.LogEntry{
		ID:        r.ID,
		EntityID:  r.EntityID,
		Action:    r.Action,
		FieldName: r.FieldName,
		OldValue:  r.OldValue,
		NewValue:  r.NewValue,
		Actor:     r.Actor,
		CreatedAt: r.CreatedAt,
	}
}

// Ensure LogServiceImpl implements the interface
var _ primary.LogService = (*LogServiceImpl)(nil)

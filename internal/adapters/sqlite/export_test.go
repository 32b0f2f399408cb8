package sqlite

import "time"

// SetEditLogClock replaces the clock used to stamp and prune entries.
func SetEditLogClock(r *EditLogRepository, now func() time.Time) {
	r.now = now
}

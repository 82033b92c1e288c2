package snapshot

import "time"

// ActivatedEvent is published after a new snapshot version becomes current.
// Consumers holding scope requests compiled against an older version must
// invalidate them.
type ActivatedEvent struct {
	Version       uint64
	EmployeeCount int
	LoadedAt      time.Time
}

// RefreshFailedEvent is published when a refresh attempt is exhausted and the
// previous snapshot stays current (last known good).
type RefreshFailedEvent struct {
	Version  uint64
	Attempts int
	Err      error
}

package session

import "time"

// End reasons used by EndedEvent.
const (
	EndReasonLogout        = "logout"
	EndReasonExpired       = "expired"
	EndReasonIdle          = "idle_timeout"
	EndReasonRefreshFailed = "refresh_failed"
)

// RefreshedEvent is published after a successful token refresh.
type RefreshedEvent struct {
	PrincipalID int64
	ExpiresAt   time.Time
	At          time.Time
}

// EndedEvent is published whenever a session terminates. Subscribers use it
// to tear down per-principal state such as compiled scopes.
type EndedEvent struct {
	PrincipalID int64
	Reason      string
	At          time.Time
}

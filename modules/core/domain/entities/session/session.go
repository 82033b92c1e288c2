package session

import "time"

type RefreshState string

const (
	RefreshIdle    RefreshState = "idle"
	RefreshPending RefreshState = "pending"
	RefreshFailed  RefreshState = "failed"
)

// Session holds the token material gating every scope resolution. It is
// owned exclusively by the session service; no other component may hold or
// mutate tokens. Mutating methods must only be called under the service's lock.
type Session struct {
	principalID     int64
	token           string
	refreshToken    string
	issuedAt        time.Time
	expiresAt       time.Time
	lastSeenAt      time.Time
	refreshState    RefreshState
	refreshFailures int
}

func New(principalID int64, token, refreshToken string, issuedAt, expiresAt time.Time) *Session {
	return &Session{
		principalID:  principalID,
		token:        token,
		refreshToken: refreshToken,
		issuedAt:     issuedAt,
		expiresAt:    expiresAt,
		lastSeenAt:   issuedAt,
		refreshState: RefreshIdle,
	}
}

func (s *Session) PrincipalID() int64         { return s.principalID }
func (s *Session) Token() string              { return s.token }
func (s *Session) RefreshToken() string       { return s.refreshToken }
func (s *Session) IssuedAt() time.Time        { return s.issuedAt }
func (s *Session) ExpiresAt() time.Time       { return s.expiresAt }
func (s *Session) LastSeenAt() time.Time      { return s.lastSeenAt }
func (s *Session) RefreshState() RefreshState { return s.refreshState }
func (s *Session) RefreshFailures() int       { return s.refreshFailures }

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.expiresAt)
}

func (s *Session) IdleExpired(now time.Time, idleTimeout time.Duration) bool {
	return now.Sub(s.lastSeenAt) >= idleTimeout
}

func (s *Session) RemainingLifetime(now time.Time) time.Duration {
	return s.expiresAt.Sub(now)
}

// NeedsRefresh reports whether the remaining lifetime dropped below the
// refresh-ahead threshold.
func (s *Session) NeedsRefresh(now time.Time, threshold time.Duration) bool {
	return s.RemainingLifetime(now) <= threshold
}

func (s *Session) Touch(now time.Time) {
	s.lastSeenAt = now
}

func (s *Session) MarkRefreshPending() {
	s.refreshState = RefreshPending
}

func (s *Session) MarkRefreshed(token, refreshToken string, expiresAt time.Time) {
	s.token = token
	if refreshToken != "" {
		s.refreshToken = refreshToken
	}
	s.expiresAt = expiresAt
	s.refreshState = RefreshIdle
	s.refreshFailures = 0
}

func (s *Session) MarkRefreshFailure() int {
	s.refreshState = RefreshFailed
	s.refreshFailures++
	return s.refreshFailures
}

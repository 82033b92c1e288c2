package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/orgsight/orgsight/modules/core/domain/entities/session"
	"github.com/orgsight/orgsight/modules/core/infrastructure/identity"
	"github.com/orgsight/orgsight/pkg/eventbus"
	"github.com/orgsight/orgsight/pkg/serrors"
)

var (
	// ErrSessionNotFound is returned for tokens with no live session.
	ErrSessionNotFound = serrors.NewError("SESSION_NOT_FOUND", "session not found", "Session.NotFound")
	// ErrSessionExpired is returned once a session's token lifetime or idle
	// window has run out. The caller must re-authenticate.
	ErrSessionExpired = serrors.NewError("SESSION_EXPIRED", "session expired", "Session.Expired")
)

type SessionServiceOptions struct {
	Provider identity.Provider
	Bus      eventbus.EventBus
	Logger   *logrus.Logger

	// RefreshThreshold is the refresh-ahead window: a refresh is attempted
	// once remaining token lifetime drops below it.
	RefreshThreshold time.Duration
	MaxRetries       int
	RetryBackoff     time.Duration
	IdleTimeout      time.Duration
	ScanInterval     time.Duration
}

// SessionService is the single owner of token material. Sessions live only
// in this service's map; consumers hold the opaque session token and nothing
// else.
type SessionService struct {
	provider identity.Provider
	bus      eventbus.EventBus
	logger   *logrus.Entry

	refreshThreshold time.Duration
	maxRetries       int
	retryBackoff     time.Duration
	idleTimeout      time.Duration
	scanInterval     time.Duration

	mu      sync.Mutex
	byToken map[string]*session.Session

	now   func() time.Time
	sleep func(time.Duration)
}

func NewSessionService(opts SessionServiceOptions) *SessionService {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if opts.RefreshThreshold <= 0 {
		opts.RefreshThreshold = 5 * time.Minute
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 8 * time.Hour
	}
	if opts.ScanInterval <= 0 {
		opts.ScanInterval = 30 * time.Second
	}
	return &SessionService{
		provider:         opts.Provider,
		bus:              opts.Bus,
		logger:           logger.WithField("component", "core.session"),
		refreshThreshold: opts.RefreshThreshold,
		maxRetries:       opts.MaxRetries,
		retryBackoff:     opts.RetryBackoff,
		idleTimeout:      opts.IdleTimeout,
		scanInterval:     opts.ScanInterval,
		byToken:          make(map[string]*session.Session),
		now:              time.Now,
		sleep:            time.Sleep,
	}
}

// Create registers a new session from freshly issued credentials and returns
// its opaque token.
func (s *SessionService) Create(ctx context.Context, principalID int64, token identity.Token) (string, error) {
	sessionToken, err := newSessionToken()
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	sess := session.New(principalID, token.AccessToken, token.RefreshToken, now, token.ExpiresAt)

	s.mu.Lock()
	s.byToken[sessionToken] = sess
	activeSessions.Set(float64(len(s.byToken)))
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"principal_id": principalID,
		"expires_at":   token.ExpiresAt,
	}).Info("session created")
	return sessionToken, nil
}

// GetByToken returns the live session for the token, enforcing both hard
// expiry and the idle timeout. A successful lookup counts as activity.
func (s *SessionService) GetByToken(ctx context.Context, token string) (*session.Session, error) {
	now := s.now().UTC()

	s.mu.Lock()
	sess, ok := s.byToken[token]
	if !ok {
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if sess.IdleExpired(now, s.idleTimeout) {
		s.dropLocked(token)
		s.mu.Unlock()
		s.ended(sess, session.EndReasonIdle)
		return nil, ErrSessionExpired
	}
	if sess.Expired(now) {
		s.dropLocked(token)
		s.mu.Unlock()
		s.ended(sess, session.EndReasonExpired)
		return nil, ErrSessionExpired
	}
	sess.Touch(now)
	s.mu.Unlock()
	return sess, nil
}

// Delete terminates the session, if present.
func (s *SessionService) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	sess, ok := s.byToken[token]
	if ok {
		s.dropLocked(token)
	}
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.ended(sess, session.EndReasonLogout)
	return nil
}

// Count returns the number of live sessions.
func (s *SessionService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byToken)
}

// Start runs the refresh-ahead loop until the context is cancelled.
func (s *SessionService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.scanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RefreshDue(ctx)
		}
	}
}

// RefreshDue refreshes every session whose remaining lifetime dropped below
// the refresh-ahead threshold. Sessions whose refresh exhausts its retry
// budget are hard-failed and removed.
func (s *SessionService) RefreshDue(ctx context.Context) {
	now := s.now().UTC()

	type due struct {
		token string
		sess  *session.Session
	}
	var pending []due

	s.mu.Lock()
	for token, sess := range s.byToken {
		if sess.RefreshState() == session.RefreshPending {
			continue
		}
		if sess.NeedsRefresh(now, s.refreshThreshold) {
			sess.MarkRefreshPending()
			pending = append(pending, due{token: token, sess: sess})
		}
	}
	s.mu.Unlock()

	for _, d := range pending {
		s.refreshSession(ctx, d.token, d.sess)
	}
}

// refreshSession retries the token grant with linear backoff. Exhaustion is
// fatal for the session: no grace period, no stale-token reuse.
func (s *SessionService) refreshSession(ctx context.Context, token string, sess *session.Session) {
	log := s.logger.WithField("principal_id", sess.PrincipalID())

	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		fresh, err := s.provider.Refresh(ctx, sess.RefreshToken())
		if err == nil {
			s.mu.Lock()
			sess.MarkRefreshed(fresh.AccessToken, fresh.RefreshToken, fresh.ExpiresAt)
			s.mu.Unlock()
			sessionRefreshes.WithLabelValues("success").Inc()
			log.WithField("expires_at", fresh.ExpiresAt).Debug("session token refreshed")
			if s.bus != nil {
				s.bus.Publish(&session.RefreshedEvent{
					PrincipalID: sess.PrincipalID(),
					ExpiresAt:   fresh.ExpiresAt,
					At:          s.now().UTC(),
				})
			}
			return
		}
		lastErr = err
		log.WithError(err).WithField("attempt", attempt).Warn("session refresh attempt failed")
		if attempt < s.maxRetries {
			select {
			case <-ctx.Done():
				return
			default:
			}
			s.sleep(s.retryBackoff * time.Duration(attempt))
		}
	}

	sessionRefreshes.WithLabelValues("failure").Inc()
	log.WithError(lastErr).Error("session refresh exhausted retries, terminating session")
	s.mu.Lock()
	sess.MarkRefreshFailure()
	s.dropLocked(token)
	s.mu.Unlock()
	s.ended(sess, session.EndReasonRefreshFailed)
}

// dropLocked removes the session from the map. Caller holds s.mu.
func (s *SessionService) dropLocked(token string) {
	delete(s.byToken, token)
	activeSessions.Set(float64(len(s.byToken)))
}

func (s *SessionService) ended(sess *session.Session, reason string) {
	s.logger.WithFields(logrus.Fields{
		"principal_id": sess.PrincipalID(),
		"reason":       reason,
	}).Info("session ended")
	if s.bus != nil {
		s.bus.Publish(&session.EndedEvent{
			PrincipalID: sess.PrincipalID(),
			Reason:      reason,
			At:          s.now().UTC(),
		})
	}
}

func newSessionToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orgsight/orgsight/modules/core/domain/entities/session"
	"github.com/orgsight/orgsight/modules/core/infrastructure/identity"
	"github.com/orgsight/orgsight/pkg/serrors"
)

type stubProvider struct {
	mu     sync.Mutex
	tokens []identity.Token
	errs   []error
	calls  int
}

func (p *stubProvider) Refresh(ctx context.Context, refreshToken string) (identity.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return identity.Token{}, p.errs[i]
	}
	if i < len(p.tokens) {
		return p.tokens[i], nil
	}
	if len(p.tokens) > 0 {
		return p.tokens[len(p.tokens)-1], nil
	}
	return identity.Token{}, errors.New("provider exhausted")
}

func (p *stubProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type recordingBus struct {
	mu     sync.Mutex
	events []interface{}
}

func (b *recordingBus) Publish(args ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, args...)
}

func (b *recordingBus) Subscribe(handler interface{})   {}
func (b *recordingBus) Unsubscribe(handler interface{}) {}
func (b *recordingBus) Clear()                          {}
func (b *recordingBus) SubscribersCount() int           { return 0 }

func (b *recordingBus) published() []interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]interface{}, len(b.events))
	copy(out, b.events)
	return out
}

func newSessionServiceForTest(provider identity.Provider, bus *recordingBus) (*SessionService, *time.Time) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := NewSessionService(SessionServiceOptions{
		Provider:         provider,
		Bus:              bus,
		RefreshThreshold: 5 * time.Minute,
		MaxRetries:       3,
		RetryBackoff:     time.Millisecond,
		IdleTimeout:      8 * time.Hour,
	})
	svc.now = func() time.Time { return now }
	svc.sleep = func(time.Duration) {}
	return svc, &now
}

func createSession(t *testing.T, svc *SessionService, principalID int64, lifetime time.Duration) string {
	t.Helper()
	token, err := svc.Create(context.Background(), principalID, identity.Token{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    svc.now().Add(lifetime),
	})
	require.NoError(t, err)
	return token
}

func TestSessionService_CreateAndGet(t *testing.T) {
	svc, _ := newSessionServiceForTest(&stubProvider{}, &recordingBus{})
	token := createSession(t, svc, 7, time.Hour)

	sess, err := svc.GetByToken(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, int64(7), sess.PrincipalID())
	require.Equal(t, "access-1", sess.Token())
	require.Equal(t, 1, svc.Count())
}

func TestSessionService_UnknownToken(t *testing.T) {
	svc, _ := newSessionServiceForTest(&stubProvider{}, &recordingBus{})
	_, err := svc.GetByToken(context.Background(), "nope")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_HardExpiry(t *testing.T) {
	bus := &recordingBus{}
	svc, now := newSessionServiceForTest(&stubProvider{}, bus)
	token := createSession(t, svc, 7, time.Hour)

	*now = now.Add(2 * time.Hour)
	_, err := svc.GetByToken(context.Background(), token)
	require.ErrorIs(t, err, ErrSessionExpired)
	require.Zero(t, svc.Count())

	events := bus.published()
	require.Len(t, events, 1)
	ended := events[0].(*session.EndedEvent)
	require.Equal(t, session.EndReasonExpired, ended.Reason)
}

func TestSessionService_IdleTimeout(t *testing.T) {
	bus := &recordingBus{}
	svc, now := newSessionServiceForTest(&stubProvider{}, bus)
	token := createSession(t, svc, 7, 24*time.Hour)

	// Activity at hour 7 keeps the session alive past the original window.
	*now = now.Add(7 * time.Hour)
	_, err := svc.GetByToken(context.Background(), token)
	require.NoError(t, err)

	*now = now.Add(7 * time.Hour)
	_, err = svc.GetByToken(context.Background(), token)
	require.NoError(t, err)

	// Eight idle hours end it regardless of token lifetime.
	*now = now.Add(8 * time.Hour)
	_, err = svc.GetByToken(context.Background(), token)
	require.ErrorIs(t, err, ErrSessionExpired)

	events := bus.published()
	require.Len(t, events, 1)
	require.Equal(t, session.EndReasonIdle, events[0].(*session.EndedEvent).Reason)
}

func TestSessionService_RefreshAhead(t *testing.T) {
	provider := &stubProvider{tokens: []identity.Token{{
		AccessToken:  "access-2",
		RefreshToken: "refresh-2",
		ExpiresAt:    time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
	}}}
	bus := &recordingBus{}
	svc, now := newSessionServiceForTest(provider, bus)
	token := createSession(t, svc, 7, 10*time.Minute)

	// Outside the window nothing happens.
	svc.RefreshDue(context.Background())
	require.Zero(t, provider.callCount())

	// Four minutes of lifetime left puts it inside the 5m window.
	*now = now.Add(6 * time.Minute)
	svc.RefreshDue(context.Background())
	require.Equal(t, 1, provider.callCount())

	sess, err := svc.GetByToken(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "access-2", sess.Token())
	require.Equal(t, "refresh-2", sess.RefreshToken())
	require.Equal(t, session.RefreshIdle, sess.RefreshState())

	var refreshed bool
	for _, event := range bus.published() {
		if _, ok := event.(*session.RefreshedEvent); ok {
			refreshed = true
		}
	}
	require.True(t, refreshed)
}

func TestSessionService_RefreshRetriesThenRecovers(t *testing.T) {
	transient := errors.New("token endpoint unavailable")
	provider := &stubProvider{
		errs: []error{transient, transient},
		tokens: []identity.Token{{}, {}, {
			AccessToken: "access-3",
			ExpiresAt:   time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
		}},
	}
	svc, now := newSessionServiceForTest(provider, &recordingBus{})
	token := createSession(t, svc, 7, 10*time.Minute)

	*now = now.Add(6 * time.Minute)
	svc.RefreshDue(context.Background())
	require.Equal(t, 3, provider.callCount())

	sess, err := svc.GetByToken(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "access-3", sess.Token())
	// Unrotated refresh token is kept.
	require.Equal(t, "refresh-1", sess.RefreshToken())
}

func TestSessionService_RefreshExhaustionHardFails(t *testing.T) {
	failure := errors.New("invalid_grant")
	provider := &stubProvider{errs: []error{failure, failure, failure}}
	bus := &recordingBus{}
	svc, now := newSessionServiceForTest(provider, bus)
	token := createSession(t, svc, 7, 10*time.Minute)

	*now = now.Add(6 * time.Minute)
	svc.RefreshDue(context.Background())
	require.Equal(t, 3, provider.callCount())

	// No grace period: the session is gone.
	_, err := svc.GetByToken(context.Background(), token)
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.Zero(t, svc.Count())

	events := bus.published()
	require.Len(t, events, 1)
	ended := events[0].(*session.EndedEvent)
	require.Equal(t, session.EndReasonRefreshFailed, ended.Reason)
	require.Equal(t, int64(7), ended.PrincipalID)
}

func TestSessionService_Delete(t *testing.T) {
	bus := &recordingBus{}
	svc, _ := newSessionServiceForTest(&stubProvider{}, bus)
	token := createSession(t, svc, 7, time.Hour)

	require.NoError(t, svc.Delete(context.Background(), token))
	require.ErrorIs(t, svc.Delete(context.Background(), token), ErrSessionNotFound)

	events := bus.published()
	require.Len(t, events, 1)
	require.Equal(t, session.EndReasonLogout, events[0].(*session.EndedEvent).Reason)
}

func TestSessionService_ErrorCodes(t *testing.T) {
	require.True(t, serrors.IsCode(ErrSessionExpired, "SESSION_EXPIRED"))
	require.True(t, serrors.IsCode(ErrSessionNotFound, "SESSION_NOT_FOUND"))
}

package composables

import (
	"context"
	"errors"

	"github.com/orgsight/orgsight/modules/core/domain/entities/session"
	"github.com/orgsight/orgsight/pkg/constants"
)

var (
	ErrNoSession = errors.New("session not found in context")
)

// WithSession returns a new context carrying the authenticated session.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	ctx = context.WithValue(ctx, constants.SessionKey, sess)
	return context.WithValue(ctx, constants.PrincipalKey, sess.PrincipalID())
}

// UseSession returns the authenticated session from the context.
func UseSession(ctx context.Context) (*session.Session, error) {
	sess, ok := ctx.Value(constants.SessionKey).(*session.Session)
	if !ok {
		return nil, ErrNoSession
	}
	return sess, nil
}

// UsePrincipalID returns the authenticated principal id from the context.
func UsePrincipalID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(constants.PrincipalKey).(int64)
	return id, ok
}

// WithPrincipalID attaches a principal id directly; used by tests and
// background jobs running on behalf of a principal.
func WithPrincipalID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, constants.PrincipalKey, id)
}

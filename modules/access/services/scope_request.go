package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orgsight/orgsight/modules/access/domain/entities/filter"
	"github.com/orgsight/orgsight/modules/access/domain/entities/scope"
	"github.com/orgsight/orgsight/pkg/serrors"
)

type ScopeRequestState string

const (
	StateRequested   ScopeRequestState = "requested"
	StateResolving   ScopeRequestState = "resolving"
	StateCompiled    ScopeRequestState = "compiled"
	StateActive      ScopeRequestState = "active"
	StateInvalidated ScopeRequestState = "invalidated"
)

var (
	// ErrInvalidTransition marks a state-machine violation.
	ErrInvalidTransition = serrors.NewError("ACCESS_INVALID_TRANSITION", "illegal scope request transition", "Access.InvalidTransition")
	// ErrRequestInvalidated is returned when acting on a superseded request.
	ErrRequestInvalidated = serrors.NewError("ACCESS_REQUEST_INVALIDATED", "scope request was invalidated", "Access.RequestInvalidated")
)

var legalTransitions = map[ScopeRequestState][]ScopeRequestState{
	StateRequested: {StateResolving, StateInvalidated},
	StateResolving: {StateCompiled, StateInvalidated},
	StateCompiled:  {StateActive, StateInvalidated},
	StateActive:    {StateInvalidated},
}

// ScopeRequest tracks one scope resolution from request to invalidation.
// Artifacts from an invalidated request must never be applied.
type ScopeRequest struct {
	id          uuid.UUID
	principalID int64
	createdAt   time.Time

	mu        sync.Mutex
	state     ScopeRequestState
	scope     scope.DataScope
	artifacts map[filter.Target]filter.Artifact
}

func newScopeRequest(principalID int64) *ScopeRequest {
	return &ScopeRequest{
		id:          uuid.New(),
		principalID: principalID,
		createdAt:   time.Now().UTC(),
		state:       StateRequested,
	}
}

func (r *ScopeRequest) ID() uuid.UUID      { return r.id }
func (r *ScopeRequest) PrincipalID() int64 { return r.principalID }

func (r *ScopeRequest) State() ScopeRequestState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *ScopeRequest) transition(to ScopeRequestState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, allowed := range legalTransitions[r.state] {
		if allowed == to {
			r.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.state, to)
}

// Invalidate marks the request superseded. Idempotent.
func (r *ScopeRequest) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateInvalidated
}

func (r *ScopeRequest) Invalidated() bool {
	return r.State() == StateInvalidated
}

// Result returns the compiled scope and artifacts, refusing if invalidated.
func (r *ScopeRequest) Result() (scope.DataScope, map[filter.Target]filter.Artifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateActive {
		return scope.DataScope{}, nil, fmt.Errorf("%w: state %s", ErrRequestInvalidated, r.state)
	}
	return r.scope, r.artifacts, nil
}

func (r *ScopeRequest) setResult(s scope.DataScope, artifacts map[filter.Target]filter.Artifact) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scope = s
	r.artifacts = artifacts
}

// RequestTracker enforces at most one live scope request per principal:
// beginning a new request invalidates the prior one, so a superseded
// resolution can never overwrite a newer result ("last request wins").
type RequestTracker struct {
	mu      sync.Mutex
	current map[int64]*ScopeRequest
}

func NewRequestTracker() *RequestTracker {
	return &RequestTracker{current: make(map[int64]*ScopeRequest)}
}

// Begin starts a new request for the principal, invalidating any prior one.
func (t *RequestTracker) Begin(principalID int64) *ScopeRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.current[principalID]; ok {
		prev.Invalidate()
	}
	req := newScopeRequest(principalID)
	t.current[principalID] = req
	return req
}

// Current returns the principal's live request, if any.
func (t *RequestTracker) Current(principalID int64) (*ScopeRequest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	req, ok := t.current[principalID]
	return req, ok
}

// InvalidateAll invalidates every live request; called on snapshot refresh
// and session termination.
func (t *RequestTracker) InvalidateAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, req := range t.current {
		req.Invalidate()
	}
}

// InvalidatePrincipal invalidates the principal's live request, if any.
func (t *RequestTracker) InvalidatePrincipal(principalID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if req, ok := t.current[principalID]; ok {
		req.Invalidate()
	}
}

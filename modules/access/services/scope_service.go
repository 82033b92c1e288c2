package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/orgsight/orgsight/modules/access/domain/entities/filter"
	"github.com/orgsight/orgsight/modules/access/domain/entities/scope"
	"github.com/orgsight/orgsight/modules/core/domain/entities/session"
	"github.com/orgsight/orgsight/modules/directory/domain/aggregates/employee"
	"github.com/orgsight/orgsight/modules/directory/domain/entities/snapshot"
	"github.com/orgsight/orgsight/pkg/eventbus"
	"github.com/orgsight/orgsight/pkg/serrors"
)

var (
	// ErrUnknownPrincipal is returned when the identity has no active record
	// in the current snapshot. No fallback scope is ever granted.
	ErrUnknownPrincipal = serrors.NewError("ACCESS_UNKNOWN_PRINCIPAL", "principal not found in directory", "Access.UnknownPrincipal")
	// ErrRegionNotConfigured is fatal for one anchor: scopes below SVP hinge
	// on the anchor's region assignment.
	ErrRegionNotConfigured = serrors.NewError("ACCESS_REGION_NOT_CONFIGURED", "anchor has no region assigned", "Access.RegionNotConfigured")
)

// SnapshotProvider is the read side of the directory service.
type SnapshotProvider interface {
	Snapshot() (*snapshot.Snapshot, error)
	Stale() bool
}

// ScopeResult is the full outcome of one scope resolution: the boundary
// itself plus the three compiled consumer artifacts.
type ScopeResult struct {
	Request         *ScopeRequest
	Scope           scope.DataScope
	Artifacts       map[filter.Target]filter.Artifact
	SnapshotVersion uint64
	Stale           bool
}

// ScopeService computes the closure of visible organizational members for an
// (identity, role level) pair over the current directory snapshot.
type ScopeService struct {
	directory SnapshotProvider
	overrides *OverrideService
	tracker   *RequestTracker
	bus       eventbus.EventBus
	logger    *logrus.Entry
}

func NewScopeService(
	directory SnapshotProvider,
	overrides *OverrideService,
	bus eventbus.EventBus,
	logger *logrus.Logger,
) *ScopeService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	svc := &ScopeService{
		directory: directory,
		overrides: overrides,
		tracker:   NewRequestTracker(),
		bus:       bus,
		logger:    logger.WithField("component", "access.scope"),
	}
	if bus != nil {
		// Snapshot turnover invalidates every scope compiled against the
		// previous version.
		bus.Subscribe(func(ev *snapshot.ActivatedEvent) {
			svc.tracker.InvalidateAll()
		})
		// A terminated session takes its compiled scopes with it.
		bus.Subscribe(func(ev *session.EndedEvent) {
			svc.tracker.InvalidatePrincipal(ev.PrincipalID)
		})
	}
	return svc
}

func (s *ScopeService) Tracker() *RequestTracker {
	return s.tracker
}

// ResolveAnchor looks up the authenticated identity's own record.
func (s *ScopeService) ResolveAnchor(ctx context.Context, principalID int64) (employee.Employee, error) {
	snap, err := s.directory.Snapshot()
	if err != nil {
		return employee.Employee{}, err
	}
	anchor, ok := snap.FindByID(principalID)
	if !ok || !anchor.IsActive() {
		return employee.Employee{}, fmt.Errorf("%w: principal %d", ErrUnknownPrincipal, principalID)
	}
	return anchor, nil
}

// ComputeScope derives the visibility boundary for the anchor at the given
// level. Monotonicity holds by construction for every anchor: the director
// scope is the region closure unioned with the anchor's direct reports, and
// the SVP scope is every active employee, so each level contains the one
// below it even when a report sits in another region or has none assigned.
func (s *ScopeService) ComputeScope(snap *snapshot.Snapshot, anchor employee.Employee, level employee.RoleLevel) (scope.DataScope, error) {
	if level != employee.RoleSVP && anchor.Region() == "" {
		return scope.DataScope{}, fmt.Errorf("%w: anchor %d", ErrRegionNotConfigured, anchor.ID())
	}

	switch level {
	case employee.RoleManager:
		reports := snap.DirectReports(anchor.ID())
		ids := make([]int64, 0, len(reports))
		for _, e := range reports {
			ids = append(ids, e.ID())
		}
		return scope.New(level, ids, []string{anchor.Region()}, snap.Version()), nil

	case employee.RoleDirector:
		members := snap.InRegion(anchor.Region())
		ids := make([]int64, 0, len(members))
		for _, e := range members {
			ids = append(ids, e.ID())
		}
		// Direct reports outside the anchor's region stay visible at the
		// director level; scope.New deduplicates the overlap.
		for _, e := range snap.DirectReports(anchor.ID()) {
			ids = append(ids, e.ID())
		}
		return scope.New(level, ids, []string{anchor.Region()}, snap.Version()), nil

	case employee.RoleSVP:
		actives := snap.ActiveEmployees()
		ids := make([]int64, 0, len(actives))
		for _, e := range actives {
			ids = append(ids, e.ID())
		}
		return scope.New(level, ids, snap.Regions(), snap.Version()), nil

	default:
		return scope.DataScope{}, fmt.Errorf("%w: %q", ErrInvalidRoleLevel, level)
	}
}

// Resolve runs a full scope request: anchor lookup, optional role override,
// closure computation, and compilation of all three artifacts. A new call for
// the same principal supersedes any in-flight request.
func (s *ScopeService) Resolve(ctx context.Context, principalID int64, requestedLevel employee.RoleLevel) (*ScopeResult, error) {
	if err := authorizeAccess(ctx, DashboardAuthzObject, "read"); err != nil {
		return nil, err
	}

	snap, err := s.directory.Snapshot()
	if err != nil {
		return nil, err
	}

	anchor, err := s.ResolveAnchor(ctx, principalID)
	if err != nil {
		return nil, err
	}

	level := anchor.RoleLevel()
	if requestedLevel != "" && requestedLevel != level {
		granted, overrideErr := s.overrides.RequestOverride(ctx, anchor, requestedLevel)
		if overrideErr != nil {
			if serrors.IsCode(overrideErr, "ACCESS_OVERRIDE_FORBIDDEN") {
				// The feature degrades, the caller is not locked out: the
				// real role's scope is served instead.
				s.logger.WithFields(logrus.Fields{
					"principal_id":    principalID,
					"requested_level": requestedLevel,
				}).Warn("override clamped to actual role")
			} else {
				return nil, overrideErr
			}
		} else {
			level = granted
		}
	}

	req := s.tracker.Begin(principalID)
	if err := req.transition(StateResolving); err != nil {
		return nil, err
	}

	dataScope, err := s.ComputeScope(snap, anchor, level)
	if err != nil {
		req.Invalidate()
		return nil, err
	}

	artifacts, err := CompileAll(dataScope)
	if err != nil {
		req.Invalidate()
		return nil, err
	}
	if err := req.transition(StateCompiled); err != nil {
		return nil, err
	}

	req.setResult(dataScope, artifacts)
	if err := req.transition(StateActive); err != nil {
		// A newer request superseded this one mid-flight; its artifacts are
		// discarded rather than applied.
		return nil, fmt.Errorf("%w: superseded during resolution", ErrRequestInvalidated)
	}

	scopeResolutions.WithLabelValues(string(dataScope.EffectiveLevel())).Inc()
	if s.bus != nil {
		s.bus.Publish(&ScopeResolvedEvent{
			RequestID:       req.ID(),
			PrincipalID:     principalID,
			EffectiveLevel:  dataScope.EffectiveLevel(),
			MemberCount:     dataScope.MemberCount(),
			SnapshotVersion: dataScope.SnapshotVersion(),
			At:              time.Now().UTC(),
		})
	}

	return &ScopeResult{
		Request:         req,
		Scope:           dataScope,
		Artifacts:       artifacts,
		SnapshotVersion: snap.Version(),
		Stale:           s.directory.Stale(),
	}, nil
}

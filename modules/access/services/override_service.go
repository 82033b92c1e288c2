package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/orgsight/orgsight/modules/directory/domain/aggregates/employee"
	"github.com/orgsight/orgsight/pkg/eventbus"
	"github.com/orgsight/orgsight/pkg/serrors"
)

var (
	// ErrOverrideForbidden is returned when a requested simulation level
	// exceeds the caller's actual ceiling. Overriding "up" is an
	// authorization failure, never a feature.
	ErrOverrideForbidden = serrors.NewError("ACCESS_OVERRIDE_FORBIDDEN", "requested role exceeds authorization ceiling", "Access.OverrideForbidden")
	// ErrInvalidRoleLevel is returned for levels outside the known set.
	ErrInvalidRoleLevel = serrors.NewError("ACCESS_INVALID_ROLE_LEVEL", "unknown role level", "Access.InvalidRoleLevel")
)

// OverrideService validates and bounds "simulate this role" requests against
// the caller's actual authorization ceiling.
type OverrideService struct {
	bus    eventbus.EventBus
	logger *logrus.Entry
	now    func() time.Time
}

func NewOverrideService(bus eventbus.EventBus, logger *logrus.Logger) *OverrideService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &OverrideService{
		bus:    bus,
		logger: logger.WithField("component", "access.override"),
		now:    time.Now,
	}
}

// RequestOverride returns the level to resolve scopes at. The ceiling check
// is explicit: the requested level must not outrank the principal's actual
// level, regardless of what any UI control allowed. Every decision is
// audit-logged with principal, requested level, and timestamp.
func (s *OverrideService) RequestOverride(ctx context.Context, principal employee.Employee, requested employee.RoleLevel) (employee.RoleLevel, error) {
	if err := authorizeAccess(ctx, OverrideAuthzObject, "request"); err != nil {
		return "", err
	}
	if !requested.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRoleLevel, requested)
	}

	actual := principal.RoleLevel()
	at := s.now().UTC()
	fields := logrus.Fields{
		"principal_id":    principal.ID(),
		"actual_level":    actual,
		"requested_level": requested,
		"at":              at,
	}

	if requested.Rank() > actual.Rank() {
		overrideDecisions.WithLabelValues("denied").Inc()
		s.logger.WithFields(fields).Warn("role override denied: ceiling exceeded")
		if s.bus != nil {
			s.bus.Publish(&OverrideDeniedEvent{
				PrincipalID:    principal.ID(),
				ActualLevel:    actual,
				RequestedLevel: requested,
				At:             at,
			})
		}
		return "", fmt.Errorf("%w: %s requested %s", ErrOverrideForbidden, actual, requested)
	}

	overrideDecisions.WithLabelValues("accepted").Inc()
	s.logger.WithFields(fields).Info("role override accepted")
	if s.bus != nil {
		s.bus.Publish(&OverrideAcceptedEvent{
			PrincipalID:    principal.ID(),
			ActualLevel:    actual,
			RequestedLevel: requested,
			At:             at,
		})
	}
	return requested, nil
}

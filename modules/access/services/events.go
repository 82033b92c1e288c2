package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/orgsight/orgsight/modules/directory/domain/aggregates/employee"
)

// OverrideAcceptedEvent records an accepted role simulation for audit.
type OverrideAcceptedEvent struct {
	PrincipalID    int64
	ActualLevel    employee.RoleLevel
	RequestedLevel employee.RoleLevel
	At             time.Time
}

// OverrideDeniedEvent records a rejected role simulation; a denied override
// is a potential privilege-escalation attempt and is always audited.
type OverrideDeniedEvent struct {
	PrincipalID    int64
	ActualLevel    employee.RoleLevel
	RequestedLevel employee.RoleLevel
	At             time.Time
}

// ScopeResolvedEvent is published when a scope request reaches Active.
type ScopeResolvedEvent struct {
	RequestID       uuid.UUID
	PrincipalID     int64
	EffectiveLevel  employee.RoleLevel
	MemberCount     int
	SnapshotVersion uint64
	At              time.Time
}

package authz

import (
	"fmt"
	"strings"
)

// Mode represents the global enforcement mode.
type Mode string

const (
	ModeDisabled Mode = "disabled"
	ModeShadow   Mode = "shadow"
	ModeEnforce  Mode = "enforce"
)

func sanitizeMode(m Mode) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(string(m)))) {
	case ModeDisabled:
		return ModeDisabled
	case ModeEnforce:
		return ModeEnforce
	default:
		return ModeShadow
	}
}

const (
	subjectPrincipalPrefix = "principal"
	rolePrefix             = "role"
	objectSeparator        = "."
	subjectSeparator       = ":"
)

// Request encapsulates all parameters required to evaluate a Casbin rule.
type Request struct {
	Subject string
	Object  string
	Action  string
}

func NewRequest(subject, object, action string) Request {
	return Request{
		Subject: subject,
		Object:  object,
		Action:  NormalizeAction(action),
	}
}

// SubjectForPrincipal builds a subject identifier in the form principal:{id}.
func SubjectForPrincipal(principalID int64) string {
	return fmt.Sprintf("%s%s%d", subjectPrincipalPrefix, subjectSeparator, principalID)
}

// SubjectForRole returns the canonical identifier for a role-based subject.
func SubjectForRole(roleSlug string) string {
	roleSlug = strings.TrimSpace(strings.ToLower(roleSlug))
	if roleSlug == "" {
		roleSlug = "unnamed"
	}
	if strings.HasPrefix(roleSlug, rolePrefix+subjectSeparator) {
		return roleSlug
	}
	return rolePrefix + subjectSeparator + roleSlug
}

// ObjectName returns the canonical module.resource string, lowercased.
func ObjectName(module, resource string) string {
	module = strings.ToLower(strings.TrimSpace(module))
	resource = strings.ToLower(strings.TrimSpace(resource))
	if module == "" {
		module = "global"
	}
	if resource == "" {
		resource = "resource"
	}
	return module + objectSeparator + resource
}

// NormalizeAction lowercases and trims an action verb.
func NormalizeAction(action string) string {
	action = strings.ToLower(strings.TrimSpace(action))
	if action == "" {
		return "read"
	}
	return action
}

package services

import (
	"context"

	"github.com/orgsight/orgsight/pkg/authz"
	"github.com/orgsight/orgsight/pkg/composables"
)

// DashboardAuthzObject represents the compliance dashboard capability object.
const DashboardAuthzObject = "access.dashboard"
const OverrideAuthzObject = "access.override"
const AggregatesAuthzObject = "access.aggregates"

var authorizeAccessFn = defaultAuthorizeAccess

// AuthorizeAggregates gates aggregate evaluation for the calling principal.
func AuthorizeAggregates(ctx context.Context) error {
	return authorizeAccess(ctx, AggregatesAuthzObject, "read")
}

func authorizeAccess(ctx context.Context, object, action string) error {
	return authorizeAccessFn(ctx, object, action)
}

func defaultAuthorizeAccess(ctx context.Context, object, action string) error {
	principalID, ok := composables.UsePrincipalID(ctx)
	if !ok {
		// Unauthenticated callers are stopped earlier by the session
		// middleware; service-internal calls carry no principal.
		return nil
	}
	req := authz.NewRequest(
		authz.SubjectForPrincipal(principalID),
		object,
		action,
	)
	return authz.Use().Authorize(ctx, req)
}

package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/orgsight/orgsight/modules/access/domain/entities/filter"
	"github.com/orgsight/orgsight/modules/access/domain/entities/scope"
	"github.com/orgsight/orgsight/modules/directory/domain/aggregates/employee"
	"github.com/orgsight/orgsight/pkg/serrors"
)

var (
	// ErrInvalidScopeValue marks a scope value that failed type validation
	// before being embedded in any predicate.
	ErrInvalidScopeValue = serrors.NewError("ACCESS_INVALID_SCOPE_VALUE", "scope value failed validation", "Access.InvalidScopeValue")
	// ErrUnknownTarget marks a compile request for a consumer outside the
	// closed artifact variant.
	ErrUnknownTarget = serrors.NewError("ACCESS_UNKNOWN_TARGET", "unknown filter target", "Access.UnknownTarget")
)

const employeeTable = "employees"

// Region codes are short uppercase identifiers (EMEA, APAC, NA, LATAM, ...).
// Anything else is rejected before predicate construction.
var regionCodePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]{1,15}$`)

// Compile deterministically translates a scope into one consumer-native
// artifact. Identical (scope, target) inputs always produce an identical
// artifact: the scope is pre-sorted and no clock, randomness, or map
// iteration leaks into the output.
func Compile(s scope.DataScope, target filter.Target) (filter.Artifact, error) {
	byMember := s.EffectiveLevel() == employee.RoleManager

	var values []string
	var column string
	if byMember {
		column = filter.ColumnEmployeeID
		ids, err := validateMemberIDs(s.MemberIDs())
		if err != nil {
			return filter.Artifact{}, err
		}
		values = ids
	} else {
		column = filter.ColumnRegion
		regions, err := validateRegions(s.Regions())
		if err != nil {
			return filter.Artifact{}, err
		}
		// A region-scoped filter with no regions would render "region IN ()";
		// such a scope can only come from a misassigned anchor, so refuse it.
		if len(regions) == 0 {
			return filter.Artifact{}, fmt.Errorf("%w: empty region set for %s scope", ErrInvalidScopeValue, s.EffectiveLevel())
		}
		values = regions
	}

	switch target {
	case filter.TargetPowerBI:
		return filter.Artifact{
			Target: filter.TargetPowerBI,
			PowerBI: &filter.PowerBIFilter{
				Table:    employeeTable,
				Column:   column,
				Operator: "In",
				Values:   values,
			},
		}, nil
	case filter.TargetCatalog:
		return filter.Artifact{
			Target: filter.TargetCatalog,
			Catalog: &filter.CatalogPredicate{
				Column:     column,
				Expression: catalogExpression(column, len(values)),
				Args:       values,
			},
		}, nil
	case filter.TargetAssistant:
		ctx := &filter.AssistantContext{
			ScopeLevel: string(s.EffectiveLevel()),
			Regions:    s.Regions(),
		}
		if byMember {
			ctx.MemberIDs = s.MemberIDs()
		}
		return filter.Artifact{
			Target:    filter.TargetAssistant,
			Assistant: ctx,
		}, nil
	default:
		return filter.Artifact{}, fmt.Errorf("%w: %q", ErrUnknownTarget, target)
	}
}

// CompileAll produces the full artifact set for every known target.
func CompileAll(s scope.DataScope) (map[filter.Target]filter.Artifact, error) {
	out := make(map[filter.Target]filter.Artifact, len(filter.Targets()))
	for _, target := range filter.Targets() {
		artifact, err := Compile(s, target)
		if err != nil {
			return nil, err
		}
		out[target] = artifact
	}
	return out, nil
}

// catalogExpression renders a positional-placeholder predicate. Only the
// vetted column name is interpolated; values always travel as parameters.
func catalogExpression(column string, n int) string {
	placeholders := make([]string, n)
	for i := range placeholders {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", "))
}

func validateMemberIDs(ids []int64) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, fmt.Errorf("%w: member id %d", ErrInvalidScopeValue, id)
		}
		out = append(out, strconv.FormatInt(id, 10))
	}
	return out, nil
}

func validateRegions(regions []string) ([]string, error) {
	out := make([]string, 0, len(regions))
	for _, region := range regions {
		if !regionCodePattern.MatchString(region) {
			return nil, fmt.Errorf("%w: region %q", ErrInvalidScopeValue, region)
		}
		out = append(out, region)
	}
	return out, nil
}

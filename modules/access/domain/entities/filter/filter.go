package filter

import (
	"strconv"

	"github.com/orgsight/orgsight/modules/directory/domain/aggregates/employee"
)

// Target selects which consumer a scope is compiled for. The set is closed:
// adding a consumer means extending the Artifact variant and its dispatch.
type Target string

const (
	TargetPowerBI   Target = "powerbi"
	TargetCatalog   Target = "catalog"
	TargetAssistant Target = "assistant"
)

func Targets() []Target {
	return []Target{TargetPowerBI, TargetCatalog, TargetAssistant}
}

const (
	ColumnEmployeeID = "employee_id"
	ColumnRegion     = "region"
)

// PowerBIFilter is a basic column IN set report filter descriptor.
type PowerBIFilter struct {
	Table    string   `json:"table"`
	Column   string   `json:"column"`
	Operator string   `json:"operator"`
	Values   []string `json:"values"`
}

func (f *PowerBIFilter) Admits(e employee.Employee) bool {
	if !e.IsActive() {
		return false
	}
	return admitsByColumn(f.Column, f.Values, e)
}

// CatalogPredicate is a parameterized row filter. Expression only ever
// contains vetted identifiers and positional placeholders; values travel
// separately in Args.
type CatalogPredicate struct {
	Column     string   `json:"column"`
	Expression string   `json:"expression"`
	Args       []string `json:"args"`
}

func (p *CatalogPredicate) Admits(e employee.Employee) bool {
	if !e.IsActive() {
		return false
	}
	return admitsByColumn(p.Column, p.Args, e)
}

// AssistantContext is the conversational assistant's sole data-access
// boundary, injected at conversation-session initialization. Member ids are
// carried only for manager-level scopes.
type AssistantContext struct {
	ScopeLevel string   `json:"scope_level"`
	Regions    []string `json:"regions"`
	MemberIDs  []int64  `json:"member_ids,omitempty"`
}

func (c *AssistantContext) Admits(e employee.Employee) bool {
	if !e.IsActive() {
		return false
	}
	// Manager scopes enumerate members; an empty enumeration admits nobody.
	if c.ScopeLevel == "manager" {
		for _, id := range c.MemberIDs {
			if id == e.ID() {
				return true
			}
		}
		return false
	}
	for _, region := range c.Regions {
		if region != "" && region == e.Region() {
			return true
		}
	}
	return false
}

// Artifact is the closed tagged variant over the three filter languages.
// Exactly one branch is populated, matching Target.
type Artifact struct {
	Target    Target            `json:"target"`
	PowerBI   *PowerBIFilter    `json:"powerbi,omitempty"`
	Catalog   *CatalogPredicate `json:"catalog,omitempty"`
	Assistant *AssistantContext `json:"assistant,omitempty"`
}

// Admits reports whether the employee is selected by the artifact. All three
// branches must agree for artifacts compiled from the same scope; that
// equivalence is the compiler's central contract.
func (a Artifact) Admits(e employee.Employee) bool {
	switch a.Target {
	case TargetPowerBI:
		return a.PowerBI != nil && a.PowerBI.Admits(e)
	case TargetCatalog:
		return a.Catalog != nil && a.Catalog.Admits(e)
	case TargetAssistant:
		return a.Assistant != nil && a.Assistant.Admits(e)
	default:
		return false
	}
}

func admitsByColumn(column string, values []string, e employee.Employee) bool {
	switch column {
	case ColumnEmployeeID:
		id := strconv.FormatInt(e.ID(), 10)
		for _, v := range values {
			if v == id {
				return true
			}
		}
	case ColumnRegion:
		for _, v := range values {
			if v != "" && v == e.Region() {
				return true
			}
		}
	}
	return false
}

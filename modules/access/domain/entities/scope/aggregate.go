package scope

// CohortAggregate is a group-level metric tagged with the size of the group
// it summarizes. It never carries individual-level data.
type CohortAggregate struct {
	Name        string  `json:"name"`
	MemberCount int     `json:"member_count"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit,omitempty"`
}

package dtos

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/orgsight/orgsight/pkg/constants"
)

// ResolveScopeDTO requests a scope resolution, optionally at a simulated
// role level.
type ResolveScopeDTO struct {
	RequestedLevel string `json:"requested_level" validate:"omitempty,oneof=manager director svp"`
}

func (d *ResolveScopeDTO) Normalize() {
	d.RequestedLevel = strings.ToLower(strings.TrimSpace(d.RequestedLevel))
}

func (d *ResolveScopeDTO) Ok() (map[string]string, bool) {
	d.Normalize()
	return validate(d)
}

// OverrideDTO requests a role simulation.
type OverrideDTO struct {
	RequestedLevel string `json:"requested_level" validate:"required,oneof=manager director svp"`
}

func (d *OverrideDTO) Normalize() {
	d.RequestedLevel = strings.ToLower(strings.TrimSpace(d.RequestedLevel))
}

func (d *OverrideDTO) Ok() (map[string]string, bool) {
	d.Normalize()
	return validate(d)
}

// AggregateDTO is one cohort aggregate submitted for privacy evaluation.
type AggregateDTO struct {
	Name        string  `json:"name" validate:"required"`
	MemberCount int     `json:"member_count" validate:"gte=0"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
}

// EvaluateAggregatesDTO is a batch of aggregates to run through the cohort
// privacy guard.
type EvaluateAggregatesDTO struct {
	Aggregates []AggregateDTO `json:"aggregates" validate:"required,min=1,dive"`
}

func (d *EvaluateAggregatesDTO) Ok() (map[string]string, bool) {
	return validate(d)
}

func validate(v interface{}) (map[string]string, bool) {
	errs := constants.Validate.Struct(v)
	if errs == nil {
		return map[string]string{}, true
	}
	out := make(map[string]string)
	for _, err := range errs.(validator.ValidationErrors) {
		out[err.Field()] = err.Tag()
	}
	return out, false
}

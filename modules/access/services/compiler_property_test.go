package services

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/orgsight/orgsight/modules/access/domain/entities/filter"
	"github.com/orgsight/orgsight/modules/access/domain/entities/scope"
	"github.com/orgsight/orgsight/modules/directory/domain/aggregates/employee"
)

var genRegion = gen.OneConstOf("EMEA", "APAC", "NA", "LATAM")

var genLevel = gen.OneConstOf(employee.RoleManager, employee.RoleDirector, employee.RoleSVP)

func genScope() gopter.Gen {
	return gopter.CombineGens(
		genLevel,
		gen.SliceOfN(8, gen.Int64Range(1, 500)),
		gen.SliceOfN(2, genRegion),
	).Map(func(vals []interface{}) scope.DataScope {
		level := vals[0].(employee.RoleLevel)
		ids := vals[1].([]int64)
		regions := vals[2].([]string)
		return scope.New(level, ids, regions, 1)
	})
}

// TestCompileDeterminism verifies identical inputs always yield identical
// artifacts, for every target.
func TestCompileDeterminism(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("compilation is deterministic", prop.ForAll(
		func(s scope.DataScope) bool {
			for _, target := range filter.Targets() {
				first, err1 := Compile(s, target)
				second, err2 := Compile(s, target)
				if err1 != nil || err2 != nil {
					return err1 != nil && err2 != nil
				}
				if !reflect.DeepEqual(first, second) {
					return false
				}
			}
			return true
		},
		genScope(),
	))

	properties.TestingRun(t)
}

// TestCompileEquivalence verifies the three compiled artifacts admit exactly
// the same employees for any scope and any population.
func TestCompileEquivalence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("artifacts select identical member sets", prop.ForAll(
		func(s scope.DataScope, ids []int64, inactiveMask []bool) bool {
			artifacts, err := CompileAll(s)
			if err != nil {
				return true
			}

			for i, id := range ids {
				status := employee.StatusActive
				if i < len(inactiveMask) && inactiveMask[i] {
					status = employee.StatusInactive
				}
				region := []string{"EMEA", "APAC", "NA", "LATAM"}[id%4]
				e := employee.Hydrate(id, nil, "e@example.com", employee.RoleManager, region, "", "", "", status)

				powerbi := artifacts[filter.TargetPowerBI].Admits(e)
				catalog := artifacts[filter.TargetCatalog].Admits(e)
				assistant := artifacts[filter.TargetAssistant].Admits(e)
				if powerbi != catalog || catalog != assistant {
					return false
				}
			}
			return true
		},
		genScope(),
		gen.SliceOfN(20, gen.Int64Range(1, 500)),
		gen.SliceOfN(20, gen.Bool()),
	))

	properties.TestingRun(t)
}

// TestCompileValueOrdering verifies artifact values follow the scope's sorted
// member and region order, so artifact equality is byte equality.
func TestCompileValueOrdering(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("permuted inputs compile to the same artifact", prop.ForAll(
		func(ids []int64) bool {
			forward := scope.New(employee.RoleManager, ids, []string{"EMEA"}, 1)

			reversed := make([]int64, len(ids))
			for i, id := range ids {
				reversed[len(ids)-1-i] = id
			}
			backward := scope.New(employee.RoleManager, reversed, []string{"EMEA"}, 1)

			a1, err1 := Compile(forward, filter.TargetPowerBI)
			a2, err2 := Compile(backward, filter.TargetPowerBI)
			if err1 != nil || err2 != nil {
				return err1 != nil && err2 != nil
			}
			return reflect.DeepEqual(a1, a2)
		},
		gen.SliceOfN(10, gen.Int64Range(1, 1000)),
	))

	properties.TestingRun(t)
}

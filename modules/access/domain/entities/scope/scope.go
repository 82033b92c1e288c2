package scope

import (
	"sort"

	"github.com/orgsight/orgsight/modules/directory/domain/aggregates/employee"
)

// DataScope is the resolved authorization boundary for one (identity, role
// level) pair. It is immutable once built; a new request produces a new scope.
type DataScope struct {
	effectiveLevel  employee.RoleLevel
	memberIDs       []int64
	memberSet       map[int64]struct{}
	regions         []string
	snapshotVersion uint64
}

// New normalizes member ids and regions (sorted, deduplicated) so that equal
// scopes are structurally identical, which the compiler's determinism relies on.
func New(level employee.RoleLevel, memberIDs []int64, regions []string, snapshotVersion uint64) DataScope {
	ids := make([]int64, 0, len(memberIDs))
	set := make(map[int64]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		if _, dup := set[id]; dup {
			continue
		}
		set[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	regionSet := make(map[string]struct{}, len(regions))
	normalizedRegions := make([]string, 0, len(regions))
	for _, region := range regions {
		if region == "" {
			continue
		}
		if _, dup := regionSet[region]; dup {
			continue
		}
		regionSet[region] = struct{}{}
		normalizedRegions = append(normalizedRegions, region)
	}
	sort.Strings(normalizedRegions)

	return DataScope{
		effectiveLevel:  level,
		memberIDs:       ids,
		memberSet:       set,
		regions:         normalizedRegions,
		snapshotVersion: snapshotVersion,
	}
}

func (s DataScope) EffectiveLevel() employee.RoleLevel { return s.effectiveLevel }
func (s DataScope) SnapshotVersion() uint64            { return s.snapshotVersion }
func (s DataScope) MemberCount() int                   { return len(s.memberIDs) }

func (s DataScope) MemberIDs() []int64 {
	out := make([]int64, len(s.memberIDs))
	copy(out, s.memberIDs)
	return out
}

func (s DataScope) Regions() []string {
	out := make([]string, len(s.regions))
	copy(out, s.regions)
	return out
}

func (s DataScope) Contains(id int64) bool {
	_, ok := s.memberSet[id]
	return ok
}

func (s DataScope) HasRegion(region string) bool {
	for _, r := range s.regions {
		if r == region {
			return true
		}
	}
	return false
}

// Subset reports whether every member of s is also a member of other.
// Used to check the scope monotonicity invariant.
func (s DataScope) Subset(other DataScope) bool {
	for _, id := range s.memberIDs {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

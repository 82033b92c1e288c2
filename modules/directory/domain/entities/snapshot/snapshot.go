package snapshot

import (
	"fmt"
	"sort"
	"time"

	"github.com/orgsight/orgsight/modules/directory/domain/aggregates/employee"
	"github.com/orgsight/orgsight/pkg/serrors"
)

var (
	// ErrIntegrity marks upstream data corruption: a manager cycle or a
	// duplicate employee id. A snapshot failing this check is never activated.
	ErrIntegrity = serrors.NewError("DIRECTORY_INTEGRITY", "directory snapshot failed integrity checks", "Directory.IntegrityError")
)

// Snapshot is an immutable, versioned view of the organization chart.
// Employees are stored in an arena; the manager relation is kept as
// index-based parent pointers so cycle checks and closure computations are
// plain array traversals. A snapshot is built once and never mutated;
// refreshes build a new snapshot and swap an atomic pointer.
type Snapshot struct {
	version   uint64
	loadedAt  time.Time
	employees []employee.Employee
	byID      map[int64]int
	parents   []int   // index of manager in arena, -1 for root managers
	children  [][]int // direct-report indexes per employee
	byRegion  map[string][]int
	regions   []string
}

// Build validates records and materializes the hierarchy. Violations of the
// forest invariant (cycles, duplicate ids) return ErrIntegrity and no
// snapshot is produced.
func Build(version uint64, loadedAt time.Time, records []employee.Employee) (*Snapshot, error) {
	s := &Snapshot{
		version:   version,
		loadedAt:  loadedAt,
		employees: make([]employee.Employee, len(records)),
		byID:      make(map[int64]int, len(records)),
		parents:   make([]int, len(records)),
		children:  make([][]int, len(records)),
		byRegion:  make(map[string][]int),
	}
	copy(s.employees, records)

	for i, e := range s.employees {
		if _, dup := s.byID[e.ID()]; dup {
			return nil, fmt.Errorf("%w: duplicate employee id %d", ErrIntegrity, e.ID())
		}
		s.byID[e.ID()] = i
	}

	for i, e := range s.employees {
		s.parents[i] = -1
		managerID, ok := e.ManagerID()
		if !ok {
			continue
		}
		if managerID == e.ID() {
			return nil, fmt.Errorf("%w: employee %d is its own manager", ErrIntegrity, e.ID())
		}
		parentIdx, found := s.byID[managerID]
		if !found {
			// A dangling manager reference degrades to a root; the record
			// itself is legitimate, its manager just left the snapshot.
			continue
		}
		s.parents[i] = parentIdx
		s.children[parentIdx] = append(s.children[parentIdx], i)
	}

	if cycle := findCycle(s.parents); cycle != nil {
		ids := make([]int64, 0, len(cycle))
		for _, idx := range cycle {
			ids = append(ids, s.employees[idx].ID())
		}
		return nil, fmt.Errorf("%w: manager cycle through employees %v", ErrIntegrity, ids)
	}

	for i, e := range s.employees {
		if !e.IsActive() || e.Region() == "" {
			continue
		}
		s.byRegion[e.Region()] = append(s.byRegion[e.Region()], i)
	}
	s.regions = make([]string, 0, len(s.byRegion))
	for region := range s.byRegion {
		s.regions = append(s.regions, region)
	}
	sort.Strings(s.regions)

	return s, nil
}

// findCycle walks parent pointers with three-color marking and returns the
// participating indexes of the first cycle found, or nil.
func findCycle(parents []int) []int {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	colors := make([]int8, len(parents))
	for start := range parents {
		if colors[start] != white {
			continue
		}
		path := []int{}
		node := start
		for node != -1 && colors[node] == white {
			colors[node] = gray
			path = append(path, node)
			node = parents[node]
		}
		if node != -1 && colors[node] == gray {
			// Trim the tail leading into the cycle.
			for i, idx := range path {
				if idx == node {
					return path[i:]
				}
			}
			return path
		}
		for _, idx := range path {
			colors[idx] = black
		}
	}
	return nil
}

func (s *Snapshot) Version() uint64     { return s.version }
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }
func (s *Snapshot) Size() int           { return len(s.employees) }

// FindByID returns the employee record regardless of status.
func (s *Snapshot) FindByID(id int64) (employee.Employee, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return employee.Employee{}, false
	}
	return s.employees[idx], true
}

// DirectReports returns the active direct reports of the given manager.
func (s *Snapshot) DirectReports(managerID int64) []employee.Employee {
	idx, ok := s.byID[managerID]
	if !ok {
		return nil
	}
	out := make([]employee.Employee, 0, len(s.children[idx]))
	for _, childIdx := range s.children[idx] {
		if e := s.employees[childIdx]; e.IsActive() {
			out = append(out, e)
		}
	}
	return out
}

// InRegion returns the active employees assigned to the region.
func (s *Snapshot) InRegion(region string) []employee.Employee {
	out := make([]employee.Employee, 0, len(s.byRegion[region]))
	for _, idx := range s.byRegion[region] {
		out = append(out, s.employees[idx])
	}
	return out
}

// ActiveEmployees returns every active employee in the snapshot.
func (s *Snapshot) ActiveEmployees() []employee.Employee {
	out := make([]employee.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		if e.IsActive() {
			out = append(out, e)
		}
	}
	return out
}

// Regions returns all regions with at least one active employee, sorted.
func (s *Snapshot) Regions() []string {
	out := make([]string, len(s.regions))
	copy(out, s.regions)
	return out
}

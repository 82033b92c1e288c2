package employee

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// RoleLevel is the hierarchy level an employee holds. Levels are totally
// ordered; Rank is used for scope monotonicity and override ceiling checks.
type RoleLevel string

const (
	RoleManager  RoleLevel = "manager"
	RoleDirector RoleLevel = "director"
	RoleSVP      RoleLevel = "svp"
)

func (r RoleLevel) Rank() int {
	switch r {
	case RoleManager:
		return 1
	case RoleDirector:
		return 2
	case RoleSVP:
		return 3
	default:
		return 0
	}
}

func (r RoleLevel) Valid() bool {
	return r.Rank() > 0
}

func ParseRoleLevel(v string) (RoleLevel, error) {
	switch RoleLevel(strings.ToLower(strings.TrimSpace(v))) {
	case RoleManager:
		return RoleManager, nil
	case RoleDirector:
		return RoleDirector, nil
	case RoleSVP:
		return RoleSVP, nil
	default:
		return "", fmt.Errorf("unknown role level %q", v)
	}
}

type Employee struct {
	id         int64
	managerID  *int64
	email      string
	roleLevel  RoleLevel
	region     string
	country    string
	location   string
	department string
	status     Status
}

func New(id int64, managerID *int64, email string, roleLevel RoleLevel, region string) Employee {
	return Employee{
		id:        id,
		managerID: managerID,
		email:     strings.TrimSpace(email),
		roleLevel: roleLevel,
		region:    strings.TrimSpace(region),
		status:    StatusActive,
	}
}

func Hydrate(
	id int64,
	managerID *int64,
	email string,
	roleLevel RoleLevel,
	region string,
	country string,
	location string,
	department string,
	status Status,
) Employee {
	return Employee{
		id:         id,
		managerID:  managerID,
		email:      strings.TrimSpace(email),
		roleLevel:  roleLevel,
		region:     strings.TrimSpace(region),
		country:    strings.TrimSpace(country),
		location:   strings.TrimSpace(location),
		department: strings.TrimSpace(department),
		status:     status,
	}
}

func (e Employee) ID() int64            { return e.id }
func (e Employee) Email() string        { return e.email }
func (e Employee) RoleLevel() RoleLevel { return e.roleLevel }
func (e Employee) Region() string       { return e.region }
func (e Employee) Country() string      { return e.country }
func (e Employee) Location() string     { return e.location }
func (e Employee) Department() string   { return e.department }
func (e Employee) Status() Status       { return e.status }
func (e Employee) IsActive() bool       { return e.status == StatusActive }
func (e Employee) IsZero() bool         { return e.id == 0 }

// ManagerID returns the manager relation; root managers return (0, false).
func (e Employee) ManagerID() (int64, bool) {
	if e.managerID == nil {
		return 0, false
	}
	return *e.managerID, true
}

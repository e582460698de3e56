package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// Role represents a credential class with a fixed permission set
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleInternal Role = "internal"
	RoleReadonly Role = "readonly"
)

// AllRoles lists the known roles in matching order. The order is fixed so
// that credential comparison always walks the same sequence.
var AllRoles = []Role{RoleAdmin, RoleInternal, RoleReadonly}

// Permission represents a single capability granted to a role
type Permission string

const (
	PermissionRead    Permission = "read"
	PermissionWrite   Permission = "write"
	PermissionDelete  Permission = "delete"
	PermissionMetrics Permission = "metrics"
	PermissionConfig  Permission = "config"
)

// Roles carry explicit permission sets, not inheritance. A capability is
// granted iff it is listed here.
var rolePermissions = map[Role][]Permission{
	RoleAdmin:    {PermissionRead, PermissionWrite, PermissionDelete, PermissionMetrics, PermissionConfig},
	RoleInternal: {PermissionRead, PermissionWrite, PermissionMetrics},
	RoleReadonly: {PermissionRead},
}

// Hourly request ceilings per role for the caller quota
var roleHourlyLimits = map[Role]int{
	RoleAdmin:    1000,
	RoleInternal: 500,
	RoleReadonly: 100,
}

// defaultHourlyLimit applies to any role without an explicit ceiling
const defaultHourlyLimit = 50

// Validate checks if the Role is a known role
func (r Role) Validate() error {
	if _, ok := rolePermissions[r]; !ok {
		return goerr.New("unknown role", goerr.V("role", r))
	}
	return nil
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// Permissions returns a copy of the role's static permission set
func (r Role) Permissions() []Permission {
	perms := rolePermissions[r]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether the role's permission set includes p
func (r Role) HasPermission(p Permission) bool {
	for _, perm := range rolePermissions[r] {
		if perm == p {
			return true
		}
	}
	return false
}

// HourlyLimit returns the role's hourly request ceiling
func (r Role) HourlyLimit() int {
	if limit, ok := roleHourlyLimits[r]; ok {
		return limit
	}
	return defaultHourlyLimit
}

// String returns the string representation of Permission
func (p Permission) String() string {
	return string(p)
}

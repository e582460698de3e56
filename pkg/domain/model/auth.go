package model

import (
	"github.com/lwalder/veille/pkg/domain/types"
)

// AuthResult is the outcome of a successful authentication
type AuthResult struct {
	Role        types.Role
	Permissions []types.Permission
}

// HasPermission reports whether the resolved permission set includes p
func (r *AuthResult) HasPermission(p types.Permission) bool {
	for _, perm := range r.Permissions {
		if perm == p {
			return true
		}
	}
	return false
}

// Package security provides authorization and access control.
package security

import (
	"context"

	appctx "retailcore/internal/core/context"
	"retailcore/internal/core/apperror"
)

// Permission defines available permissions in the system.
type Permission string

const (
	// CRUD permissions
	PermissionRead   Permission = "read"
	PermissionCreate Permission = "create"
	PermissionUpdate Permission = "update"
	PermissionDelete Permission = "delete"

	// Purchase lifecycle permissions
	PermissionReceive Permission = "receive"
	PermissionPay     Permission = "pay"
	PermissionCancel  Permission = "cancel"

	// Admin permissions
	PermissionAdmin Permission = "admin"
	PermissionAudit Permission = "audit"
)

// Role defines a set of permissions.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleClerk   Role = "clerk"
	RoleViewer  Role = "viewer"
)

// rolePermissions maps each role to what it may do.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionRead, PermissionCreate, PermissionUpdate, PermissionDelete,
		PermissionReceive, PermissionPay, PermissionCancel,
		PermissionAdmin, PermissionAudit,
	},
	RoleManager: {
		PermissionRead, PermissionCreate, PermissionUpdate, PermissionDelete,
		PermissionReceive, PermissionPay, PermissionCancel,
	},
	RoleClerk: {
		PermissionRead, PermissionCreate, PermissionUpdate,
		PermissionReceive, PermissionPay,
	},
	RoleViewer: {
		PermissionRead,
	},
}

// IsValidRole reports whether the role name is known.
func IsValidRole(role string) bool {
	_, ok := rolePermissions[Role(role)]
	return ok
}

// RoleHasPermission reports whether the role grants the permission.
func RoleHasPermission(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// AccessScope defines the boundaries of authorization for the current request.
type AccessScope struct {
	// TenantID is the current tenant (from request/JWT).
	TenantID string

	// UserID is the authenticated user
	UserID string

	// Role grants a fixed permission set
	Role Role

	// IsAdmin bypasses permission checks
	IsAdmin bool
}

// Can reports whether the scope allows the permission.
func (s *AccessScope) Can(perm Permission) bool {
	if s.IsAdmin {
		return true
	}
	return RoleHasPermission(s.Role, perm)
}

// ScopeFromContext builds an AccessScope from the authenticated user.
func ScopeFromContext(ctx context.Context) *AccessScope {
	u := appctx.GetUser(ctx)
	if u == nil {
		return nil
	}
	return &AccessScope{
		TenantID: u.TenantID,
		UserID:   u.UserID,
		Role:     Role(u.Role),
		IsAdmin:  u.IsAdmin,
	}
}

// RequirePermission fails with FORBIDDEN unless the request's scope allows
// the permission.
func RequirePermission(ctx context.Context, perm Permission) error {
	scope := ScopeFromContext(ctx)
	if scope == nil {
		return apperror.NewUnauthorized("authentication required")
	}
	if !scope.Can(perm) {
		return apperror.NewForbidden("permission denied").
			WithDetail("permission", string(perm)).
			WithDetail("role", string(scope.Role))
	}
	return nil
}

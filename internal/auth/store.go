package auth

import (
	"context"
	"time"
)

// UserUpdate mutates a subset of user fields. Nil fields are left untouched.
// Password carries plaintext on the way in; the RBAC service hashes it
// before the update reaches a store.
type UserUpdate struct {
	Name     *string
	Username *string
	Email    *string
	Password *string
	IsActive *bool
}

// RoleUpdate mutates a subset of role fields.
type RoleUpdate struct {
	Name        *string
	Description *string
}

// Store describes the persistence operations required by the auth subsystem.
// Implementations map uniqueness violations to ErrConflict and missing rows
// to ErrNotFound.
type Store interface {
	CreateUser(ctx context.Context, u NewUser) (User, error)
	GetUser(ctx context.Context, userID string) (User, error)
	FindUserByEmail(ctx context.Context, email string) (User, error)
	FindUserByUsername(ctx context.Context, username string) (User, error)
	ListUsers(ctx context.Context, page, limit int) ([]User, int, error)
	UpdateUser(ctx context.Context, userID string, upd UserUpdate) (User, error)
	DeactivateUser(ctx context.Context, userID string) error
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error

	CreateRole(ctx context.Context, name, description string) (Role, error)
	GetRole(ctx context.Context, roleID string) (Role, error)
	ListRoles(ctx context.Context, page, limit int) ([]Role, int, error)
	UpdateRole(ctx context.Context, roleID string, upd RoleUpdate) (Role, error)
	DeleteRole(ctx context.Context, roleID string) error

	EnsurePermissions(ctx context.Context, perms []Permission) error
	ListPermissions(ctx context.Context) ([]Permission, error)
	// SetRolePermissions replaces the role's grant set atomically:
	// delete-all then insert-all inside one transaction.
	SetRolePermissions(ctx context.Context, roleID string, permissionKeys []string) error
	PermissionsForRole(ctx context.Context, roleID string) ([]Permission, error)

	// SetUserRoles and SetUserBranches have the same replace-set semantics
	// as SetRolePermissions.
	SetUserRoles(ctx context.Context, userID string, roleIDs []string) error
	RolesForUser(ctx context.Context, userID string) ([]Role, error)
	SetUserBranches(ctx context.Context, userID string, branchIDs []string) error
	BranchesForUser(ctx context.Context, userID string) ([]BranchAssignment, error)

	// UserPermissionKeys returns the deduplicated permission keys reachable
	// through the user's roles.
	UserPermissionKeys(ctx context.Context, userID string) ([]string, error)
}

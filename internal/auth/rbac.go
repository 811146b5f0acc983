package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// RBACService exposes the administrative user/role/permission operations.
// It normalizes input, hashes passwords and delegates persistence to Store.
type RBACService struct {
	store Store
}

// NewRBACService constructs the service.
func NewRBACService(store Store) (*RBACService, error) {
	if store == nil {
		return nil, errors.New("rbac store is required")
	}
	return &RBACService{store: store}, nil
}

// CreateUserInput carries the fields accepted on user creation. At least
// one of Username/Email must be set so the account stays reachable as a
// login identifier.
type CreateUserInput struct {
	Name     string
	Username string
	Email    string
	Password string
	IsActive *bool
}

func (s *RBACService) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return User{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if username == "" && email == "" {
		return User{}, fmt.Errorf("%w: username or email is required", ErrInvalidInput)
	}
	if email != "" && !strings.Contains(email, "@") {
		return User{}, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	// "@" classifies a login identifier as an email, so usernames may not
	// contain it.
	if strings.Contains(username, "@") {
		return User{}, fmt.Errorf("%w: username must not contain @", ErrInvalidInput)
	}
	password := strings.TrimSpace(in.Password)
	if password == "" {
		return User{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return User{}, err
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return s.store.CreateUser(ctx, NewUser{
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     active,
	})
}

func (s *RBACService) GetUser(ctx context.Context, userID string) (User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return User{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	return s.store.GetUser(ctx, userID)
}

func (s *RBACService) ListUsers(ctx context.Context, page, limit int) ([]User, int, error) {
	page, limit = NormalizePage(page, limit)
	return s.store.ListUsers(ctx, page, limit)
}

func (s *RBACService) UpdateUser(ctx context.Context, userID string, upd UserUpdate) (User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return User{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return User{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		upd.Name = &name
	}
	if upd.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*upd.Email))
		if email == "" || !strings.Contains(email, "@") {
			return User{}, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
		}
		upd.Email = &email
	}
	if upd.Username != nil {
		username := strings.TrimSpace(*upd.Username)
		if username == "" || strings.Contains(username, "@") {
			return User{}, fmt.Errorf("%w: username must be non-empty and must not contain @", ErrInvalidInput)
		}
		upd.Username = &username
	}
	if upd.Password != nil {
		pw := strings.TrimSpace(*upd.Password)
		if pw == "" {
			return User{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
		}
		hash, err := HashPassword(pw)
		if err != nil {
			return User{}, err
		}
		upd.Password = &hash
	}
	return s.store.UpdateUser(ctx, userID, upd)
}

// DeactivateUser toggles the account off. Users are never hard deleted.
func (s *RBACService) DeactivateUser(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	return s.store.DeactivateUser(ctx, userID)
}

func (s *RBACService) CreateRole(ctx context.Context, name, description string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Role{}, fmt.Errorf("%w: role name is required", ErrInvalidInput)
	}
	return s.store.CreateRole(ctx, name, strings.TrimSpace(description))
}

func (s *RBACService) GetRole(ctx context.Context, roleID string) (Role, error) {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return Role{}, fmt.Errorf("%w: role_id is required", ErrInvalidInput)
	}
	return s.store.GetRole(ctx, roleID)
}

func (s *RBACService) ListRoles(ctx context.Context, page, limit int) ([]Role, int, error) {
	page, limit = NormalizePage(page, limit)
	return s.store.ListRoles(ctx, page, limit)
}

func (s *RBACService) UpdateRole(ctx context.Context, roleID string, upd RoleUpdate) (Role, error) {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return Role{}, fmt.Errorf("%w: role_id is required", ErrInvalidInput)
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return Role{}, fmt.Errorf("%w: role name is required", ErrInvalidInput)
		}
		upd.Name = &name
	}
	if upd.Description != nil {
		desc := strings.TrimSpace(*upd.Description)
		upd.Description = &desc
	}
	return s.store.UpdateRole(ctx, roleID, upd)
}

func (s *RBACService) DeleteRole(ctx context.Context, roleID string) error {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return fmt.Errorf("%w: role_id is required", ErrInvalidInput)
	}
	return s.store.DeleteRole(ctx, roleID)
}

func (s *RBACService) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.store.ListPermissions(ctx)
}

func (s *RBACService) PermissionsForRole(ctx context.Context, roleID string) ([]Permission, error) {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return nil, fmt.Errorf("%w: role_id is required", ErrInvalidInput)
	}
	return s.store.PermissionsForRole(ctx, roleID)
}

// SetRolePermissions replaces the role's grant set atomically.
func (s *RBACService) SetRolePermissions(ctx context.Context, roleID string, permissionKeys []string) error {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return fmt.Errorf("%w: role_id is required", ErrInvalidInput)
	}
	return s.store.SetRolePermissions(ctx, roleID, dedupeStrings(permissionKeys))
}

// SetUserRoles replaces the user's role set atomically.
func (s *RBACService) SetUserRoles(ctx context.Context, userID string, roleIDs []string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	return s.store.SetUserRoles(ctx, userID, dedupeStrings(roleIDs))
}

func (s *RBACService) RolesForUser(ctx context.Context, userID string) ([]Role, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	return s.store.RolesForUser(ctx, userID)
}

// SetUserBranches replaces the user's branch assignments atomically.
func (s *RBACService) SetUserBranches(ctx context.Context, userID string, branchIDs []string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	return s.store.SetUserBranches(ctx, userID, dedupeStrings(branchIDs))
}

func (s *RBACService) BranchesForUser(ctx context.Context, userID string) ([]BranchAssignment, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	return s.store.BranchesForUser(ctx, userID)
}

// NormalizePage clamps pagination inputs to sane bounds.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return page, limit
}

func dedupeStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := set[v]; ok {
			continue
		}
		set[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

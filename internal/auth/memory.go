package auth

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/JuanPaGargoo/pos-core-api/internal/ids"
)

// MemoryStore is a process-local Store used by tests and by the server when
// no database DSN is configured. All methods are safe for concurrent use.
type MemoryStore struct {
	mu sync.RWMutex

	users map[string]User
	roles map[string]Role
	perms map[string]Permission // keyed by permission key

	rolePerms    map[string][]string // role id -> permission keys
	userRoles    map[string][]string // user id -> role ids
	userBranches map[string][]string // user id -> branch ids

	// BranchName lets callers resolve branch names for assignments without
	// pulling in the directory package.
	BranchName func(branchID string) string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]User),
		roles:        make(map[string]Role),
		perms:        make(map[string]Permission),
		rolePerms:    make(map[string][]string),
		userRoles:    make(map[string][]string),
		userBranches: make(map[string][]string),
	}
}

func (m *MemoryStore) CreateUser(_ context.Context, u NewUser) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if u.Email != "" && existing.Email == u.Email {
			return User{}, fmt.Errorf("%w: email already in use", ErrConflict)
		}
		if u.Username != "" && existing.Username == u.Username {
			return User{}, fmt.Errorf("%w: username already in use", ErrConflict)
		}
	}
	now := time.Now().UTC()
	user := User{
		ID:           ids.New(),
		Name:         u.Name,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *MemoryStore) GetUser(_ context.Context, userID string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return User{}, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return u, nil
}

func (m *MemoryStore) FindUserByEmail(_ context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email != "" && strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return User{}, fmt.Errorf("%w: user by email", ErrNotFound)
}

func (m *MemoryStore) FindUserByUsername(_ context.Context, username string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username != "" && u.Username == username {
			return u, nil
		}
	}
	return User{}, fmt.Errorf("%w: user by username", ErrNotFound)
}

func (m *MemoryStore) ListUsers(_ context.Context, page, limit int) ([]User, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	return pageSlice(all, page, limit), total, nil
}

func (m *MemoryStore) UpdateUser(_ context.Context, userID string, upd UserUpdate) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return User{}, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	if upd.Email != nil {
		for id, other := range m.users {
			if id != userID && other.Email != "" && strings.EqualFold(other.Email, *upd.Email) {
				return User{}, fmt.Errorf("%w: email already in use", ErrConflict)
			}
		}
		u.Email = *upd.Email
	}
	if upd.Username != nil {
		for id, other := range m.users {
			if id != userID && other.Username == *upd.Username {
				return User{}, fmt.Errorf("%w: username already in use", ErrConflict)
			}
		}
		u.Username = *upd.Username
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Password != nil {
		u.PasswordHash = *upd.Password
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}
	u.UpdatedAt = time.Now().UTC()
	m.users[userID] = u
	return u, nil
}

func (m *MemoryStore) DeactivateUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	u.IsActive = false
	u.UpdatedAt = time.Now().UTC()
	m.users[userID] = u
	return nil
}

func (m *MemoryStore) TouchLastLogin(_ context.Context, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	at = at.UTC()
	u.LastLoginAt = &at
	m.users[userID] = u
	return nil
}

func (m *MemoryStore) CreateRole(_ context.Context, name, description string) (Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.roles {
		if r.Name == name {
			return Role{}, fmt.Errorf("%w: role name already in use", ErrConflict)
		}
	}
	now := time.Now().UTC()
	role := Role{
		ID:          ids.New(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.roles[role.ID] = role
	return role, nil
}

func (m *MemoryStore) GetRole(_ context.Context, roleID string) (Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.roles[roleID]
	if !ok {
		return Role{}, fmt.Errorf("%w: role %s", ErrNotFound, roleID)
	}
	return r, nil
}

func (m *MemoryStore) ListRoles(_ context.Context, page, limit int) ([]Role, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]Role, 0, len(m.roles))
	for _, r := range m.roles {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	return pageSlice(all, page, limit), total, nil
}

func (m *MemoryStore) UpdateRole(_ context.Context, roleID string, upd RoleUpdate) (Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.roles[roleID]
	if !ok {
		return Role{}, fmt.Errorf("%w: role %s", ErrNotFound, roleID)
	}
	if upd.Name != nil {
		for id, other := range m.roles {
			if id != roleID && other.Name == *upd.Name {
				return Role{}, fmt.Errorf("%w: role name already in use", ErrConflict)
			}
		}
		r.Name = *upd.Name
	}
	if upd.Description != nil {
		r.Description = *upd.Description
	}
	r.UpdatedAt = time.Now().UTC()
	m.roles[roleID] = r
	return r, nil
}

func (m *MemoryStore) DeleteRole(_ context.Context, roleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.roles[roleID]; !ok {
		return fmt.Errorf("%w: role %s", ErrNotFound, roleID)
	}
	delete(m.roles, roleID)
	delete(m.rolePerms, roleID)
	for userID, roleIDs := range m.userRoles {
		m.userRoles[userID] = removeString(roleIDs, roleID)
	}
	return nil
}

func (m *MemoryStore) EnsurePermissions(_ context.Context, perms []Permission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range perms {
		if _, ok := m.perms[p.Key]; ok {
			continue
		}
		if p.ID == "" {
			p.ID = ids.New()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now().UTC()
		}
		m.perms[p.Key] = p
	}
	return nil
}

func (m *MemoryStore) ListPermissions(_ context.Context) ([]Permission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]Permission, 0, len(m.perms))
	for _, p := range m.perms {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Key < all[j].Key })
	return all, nil
}

func (m *MemoryStore) SetRolePermissions(_ context.Context, roleID string, permissionKeys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.roles[roleID]; !ok {
		return fmt.Errorf("%w: role %s", ErrNotFound, roleID)
	}
	for _, key := range permissionKeys {
		if _, ok := m.perms[key]; !ok {
			return fmt.Errorf("%w: permission %s", ErrNotFound, key)
		}
	}
	m.rolePerms[roleID] = append([]string(nil), permissionKeys...)
	return nil
}

func (m *MemoryStore) PermissionsForRole(_ context.Context, roleID string) ([]Permission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.roles[roleID]; !ok {
		return nil, fmt.Errorf("%w: role %s", ErrNotFound, roleID)
	}
	result := make([]Permission, 0, len(m.rolePerms[roleID]))
	for _, key := range m.rolePerms[roleID] {
		if p, ok := m.perms[key]; ok {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

func (m *MemoryStore) SetUserRoles(_ context.Context, userID string, roleIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	for _, roleID := range roleIDs {
		if _, ok := m.roles[roleID]; !ok {
			return fmt.Errorf("%w: role %s", ErrNotFound, roleID)
		}
	}
	m.userRoles[userID] = append([]string(nil), roleIDs...)
	return nil
}

func (m *MemoryStore) RolesForUser(_ context.Context, userID string) ([]Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.users[userID]; !ok {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	result := make([]Role, 0, len(m.userRoles[userID]))
	for _, roleID := range m.userRoles[userID] {
		if r, ok := m.roles[roleID]; ok {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *MemoryStore) SetUserBranches(_ context.Context, userID string, branchIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	m.userBranches[userID] = append([]string(nil), branchIDs...)
	return nil
}

func (m *MemoryStore) BranchesForUser(_ context.Context, userID string) ([]BranchAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.users[userID]; !ok {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	result := make([]BranchAssignment, 0, len(m.userBranches[userID]))
	for _, branchID := range m.userBranches[userID] {
		ba := BranchAssignment{UserID: userID, BranchID: branchID}
		if m.BranchName != nil {
			ba.BranchName = m.BranchName(branchID)
		}
		result = append(result, ba)
	}
	return result, nil
}

func (m *MemoryStore) UserPermissionKeys(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.users[userID]; !ok {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	set := make(map[string]struct{})
	for _, roleID := range m.userRoles[userID] {
		for _, key := range m.rolePerms[roleID] {
			set[key] = struct{}{}
		}
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func pageSlice[T any](all []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(all) {
		return []T{}
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

func removeString(values []string, target string) []string {
	result := values[:0]
	for _, v := range values {
		if v != target {
			result = append(result, v)
		}
	}
	return result
}

package auth

import (
	"context"
	"errors"
	"testing"
)

func newRBAC(t *testing.T) (*RBACService, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	if err := store.EnsurePermissions(context.Background(), BuiltinPermissions); err != nil {
		t.Fatalf("EnsurePermissions: %v", err)
	}
	svc, err := NewRBACService(store)
	if err != nil {
		t.Fatalf("NewRBACService: %v", err)
	}
	return svc, store
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newRBAC(t)
	ctx := context.Background()

	cases := map[string]CreateUserInput{
		"missing name":       {Username: "ana", Password: "pw"},
		"missing identifier": {Name: "Ana", Password: "pw"},
		"bad email":          {Name: "Ana", Email: "not-an-email", Password: "pw"},
		"username with at":   {Name: "Ana", Username: "ana@shop", Password: "pw"},
		"missing password":   {Name: "Ana", Username: "ana"},
	}
	for name, in := range cases {
		if _, err := svc.CreateUser(ctx, in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestCreateUserNormalizes(t *testing.T) {
	svc, _ := newRBAC(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, CreateUserInput{
		Name:     "  Ana  ",
		Username: " ana ",
		Email:    "  Ana@Example.COM ",
		Password: "pw-12345",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Name != "Ana" || u.Username != "ana" || u.Email != "ana@example.com" {
		t.Fatalf("input not normalized: %+v", u)
	}
	if !u.IsActive {
		t.Fatalf("users default to active")
	}
	if u.PasswordHash == "pw-12345" || u.PasswordHash == "" {
		t.Fatalf("password must be hashed")
	}
	if err := VerifyPassword(u.PasswordHash, "pw-12345"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	svc, _ := newRBAC(t)
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, CreateUserInput{Name: "Ana", Email: "ana@example.com", Password: "pw"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := svc.CreateUser(ctx, CreateUserInput{Name: "Other", Email: "ana@example.com", Password: "pw"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUpdateUserPartial(t *testing.T) {
	svc, _ := newRBAC(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, CreateUserInput{Name: "Ana", Username: "ana", Email: "ana@example.com", Password: "pw-old"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	newName := "Ana Maria"
	newPW := "pw-new"
	updated, err := svc.UpdateUser(ctx, u.ID, UserUpdate{Name: &newName, Password: &newPW})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Name != "Ana Maria" {
		t.Fatalf("name not updated: %s", updated.Name)
	}
	if updated.Username != "ana" || updated.Email != "ana@example.com" {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
	if err := VerifyPassword(updated.PasswordHash, "pw-new"); err != nil {
		t.Fatalf("password not rehashed: %v", err)
	}

	bad := "nope"
	if _, err := svc.UpdateUser(ctx, u.ID, UserUpdate{Email: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad email accepted: %v", err)
	}
	if _, err := svc.UpdateUser(ctx, "missing", UserUpdate{Name: &newName}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user: %v", err)
	}
}

func TestRoleLifecycle(t *testing.T) {
	svc, _ := newRBAC(t)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "  manager  ", " Runs a branch ")
	if err != nil {
		t.Fatalf("CreateRole: %v", err)
	}
	if role.Name != "manager" || role.Description != "Runs a branch" {
		t.Fatalf("input not trimmed: %+v", role)
	}

	if _, err := svc.CreateRole(ctx, "manager", ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate role name accepted: %v", err)
	}
	if _, err := svc.CreateRole(ctx, "   ", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank role name accepted: %v", err)
	}

	newName := "branch-manager"
	updated, err := svc.UpdateRole(ctx, role.ID, RoleUpdate{Name: &newName})
	if err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	if updated.Name != "branch-manager" {
		t.Fatalf("role not renamed: %+v", updated)
	}

	if err := svc.DeleteRole(ctx, role.ID); err != nil {
		t.Fatalf("DeleteRole: %v", err)
	}
	if _, err := svc.GetRole(ctx, role.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted role still exists: %v", err)
	}
}

func TestDeleteRoleDetachesUsers(t *testing.T) {
	svc, store := newRBAC(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, CreateUserInput{Name: "Ana", Username: "ana", Password: "pw"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	role, err := svc.CreateRole(ctx, "manager", "")
	if err != nil {
		t.Fatalf("CreateRole: %v", err)
	}
	if err := svc.SetUserRoles(ctx, u.ID, []string{role.ID}); err != nil {
		t.Fatalf("SetUserRoles: %v", err)
	}
	if err := svc.DeleteRole(ctx, role.ID); err != nil {
		t.Fatalf("DeleteRole: %v", err)
	}
	roles, err := store.RolesForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("RolesForUser: %v", err)
	}
	if len(roles) != 0 {
		t.Fatalf("deleted role still assigned: %+v", roles)
	}
}

func TestSetRolePermissionsReplaces(t *testing.T) {
	svc, _ := newRBAC(t)
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "manager", "")
	if err != nil {
		t.Fatalf("CreateRole: %v", err)
	}

	if err := svc.SetRolePermissions(ctx, role.ID, []string{PermissionUsersRead, PermissionUsersRead, PermissionRolesRead}); err != nil {
		t.Fatalf("SetRolePermissions: %v", err)
	}
	perms, err := svc.PermissionsForRole(ctx, role.ID)
	if err != nil {
		t.Fatalf("PermissionsForRole: %v", err)
	}
	if len(perms) != 2 {
		t.Fatalf("duplicates not collapsed: %+v", perms)
	}

	// Replace, not merge.
	if err := svc.SetRolePermissions(ctx, role.ID, []string{PermissionAuditRead}); err != nil {
		t.Fatalf("SetRolePermissions: %v", err)
	}
	perms, err = svc.PermissionsForRole(ctx, role.ID)
	if err != nil {
		t.Fatalf("PermissionsForRole: %v", err)
	}
	if len(perms) != 1 || perms[0].Key != PermissionAuditRead {
		t.Fatalf("grant set not replaced: %+v", perms)
	}

	// Clearing with an empty set is valid.
	if err := svc.SetRolePermissions(ctx, role.ID, nil); err != nil {
		t.Fatalf("SetRolePermissions clear: %v", err)
	}
	perms, err = svc.PermissionsForRole(ctx, role.ID)
	if err != nil {
		t.Fatalf("PermissionsForRole: %v", err)
	}
	if len(perms) != 0 {
		t.Fatalf("grant set not cleared: %+v", perms)
	}

	if err := svc.SetRolePermissions(ctx, role.ID, []string{"nonexistent.key"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown permission accepted: %v", err)
	}
}

func TestListUsersPagination(t *testing.T) {
	svc, _ := newRBAC(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		if _, err := svc.CreateUser(ctx, CreateUserInput{Name: name, Username: name, Password: "pw"}); err != nil {
			t.Fatalf("CreateUser %s: %v", name, err)
		}
	}

	users, total, err := svc.ListUsers(ctx, 1, 2)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if total != 3 || len(users) != 2 {
		t.Fatalf("page 1: total=%d len=%d", total, len(users))
	}
	users, total, err = svc.ListUsers(ctx, 2, 2)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if total != 3 || len(users) != 1 {
		t.Fatalf("page 2: total=%d len=%d", total, len(users))
	}
	// Out-of-range pages return an empty slice, not an error.
	users, _, err = svc.ListUsers(ctx, 99, 2)
	if err != nil || len(users) != 0 {
		t.Fatalf("page 99: len=%d err=%v", len(users), err)
	}
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 50},
		{-5, -1, 1, 50},
		{2, 25, 2, 25},
		{1, 1000, 1, 50},
	}
	for _, tc := range cases {
		gotPage, gotLimit := NormalizePage(tc.page, tc.limit)
		if gotPage != tc.wantPage || gotLimit != tc.wantLimit {
			t.Fatalf("NormalizePage(%d,%d) = %d,%d; want %d,%d", tc.page, tc.limit, gotPage, gotLimit, tc.wantPage, tc.wantLimit)
		}
	}
}

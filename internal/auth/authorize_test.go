package auth

import (
	"errors"
	"testing"
)

func TestAuthorize(t *testing.T) {
	p := NewPrincipal(User{ID: "user-1"}, nil, []string{PermissionUsersRead, PermissionRolesRead})

	if err := Authorize(p, PermissionUsersRead); err != nil {
		t.Fatalf("expected allow: %v", err)
	}
	if err := Authorize(p, ""); err != nil {
		t.Fatalf("empty key must allow: %v", err)
	}

	err := Authorize(p, PermissionUsersDelete)
	var perr *PermissionError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PermissionError, got %v", err)
	}
	if perr.Permission != PermissionUsersDelete {
		t.Fatalf("error should name the missing key, got %s", perr.Permission)
	}
}

func TestRequiredPermission(t *testing.T) {
	key, ok := RequiredPermission("PUT", "/v1/users/{id}/roles")
	if !ok || key != PermissionUsersAssignRoles {
		t.Fatalf("unexpected mapping: %s, ok=%v", key, ok)
	}
	if _, ok := RequiredPermission("GET", "/v1/auth/me"); ok {
		t.Fatalf("self-service route must not be gated")
	}
}

func TestContextPrincipalRoundTrip(t *testing.T) {
	p := NewPrincipal(User{ID: "user-9"}, nil, []string{PermissionAuditRead})
	ctx := ContextWithPrincipal(t.Context(), p)
	got, ok := PrincipalFromContext(ctx)
	if !ok || got.User.ID != "user-9" || !got.HasPermission(PermissionAuditRead) {
		t.Fatalf("principal did not survive the context: %+v, ok=%v", got, ok)
	}
	if _, ok := PrincipalFromContext(t.Context()); ok {
		t.Fatalf("expected no principal on a fresh context")
	}
}

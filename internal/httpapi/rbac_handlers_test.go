package httpapi

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/JuanPaGargoo/pos-core-api/internal/auth"
)

func TestUserAdministrationFlow(t *testing.T) {
	c := newTestAPI(t)
	tokens := c.seedOperator("admin", allPermissionKeys())
	hdr := bearer(tokens.AccessToken)

	resp := c.post("/v1/users", map[string]any{
		"name":     "Dana Clerk",
		"email":    "Dana@Example.COM",
		"password": "hunter2hunter2",
	}, hdr)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create user status: %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc == "" {
		t.Fatalf("missing Location header")
	}
	created := decode[struct {
		Data auth.User `json:"data"`
	}](t, resp)
	if created.Data.Email != "dana@example.com" {
		t.Fatalf("email not normalized: %q", created.Data.Email)
	}
	if !created.Data.IsActive {
		t.Fatalf("user should default to active")
	}

	resp = c.get("/v1/users/"+created.Data.ID, nil, hdr)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get user status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	newName := "Dana Supervisor"
	resp = c.patch("/v1/users/"+created.Data.ID, map[string]any{"name": newName}, hdr)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch user status: %d", resp.StatusCode)
	}
	updated := decode[struct {
		Data auth.User `json:"data"`
	}](t, resp)
	if updated.Data.Name != newName {
		t.Fatalf("name = %q, want %q", updated.Data.Name, newName)
	}

	resp = c.delete("/v1/users/"+created.Data.ID, hdr)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deactivate status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.get("/v1/users/"+created.Data.ID, nil, hdr)
	deactivated := decode[struct {
		Data auth.User `json:"data"`
	}](t, resp)
	if deactivated.Data.IsActive {
		t.Fatalf("user should be inactive after delete")
	}
}

func TestCreateUserConflictsAndValidation(t *testing.T) {
	c := newTestAPI(t)
	tokens := c.seedOperator("admin", allPermissionKeys())
	hdr := bearer(tokens.AccessToken)

	resp := c.post("/v1/users", map[string]any{
		"name":     "First",
		"username": "clerk",
		"password": "hunter2hunter2",
	}, hdr)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = c.post("/v1/users", map[string]any{
		"name":     "Second",
		"username": "clerk",
		"password": "hunter2hunter2",
	}, hdr)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate username should 409, got %d", resp.StatusCode)
	}

	resp2 := c.post("/v1/users", map[string]any{
		"name":     "No Identifier",
		"password": "hunter2hunter2",
	}, hdr)
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing identifier should 400, got %d", resp2.StatusCode)
	}

	resp3 := c.post("/v1/users", map[string]any{
		"name":    "Unknown Field",
		"email":   "x@example.com",
		"passwd":  "typo-field",
		"surname": "nope",
	}, hdr)
	defer resp3.Body.Close()
	if resp3.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown field should 400, got %d", resp3.StatusCode)
	}
}

func TestRoleGrantFlow(t *testing.T) {
	c := newTestAPI(t)
	tokens := c.seedOperator("admin", allPermissionKeys())
	hdr := bearer(tokens.AccessToken)

	resp := c.post("/v1/roles", map[string]any{
		"name":        "inventory-manager",
		"description": "Handles warehouses and locations",
	}, hdr)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create role status: %d", resp.StatusCode)
	}
	role := decode[struct {
		Data auth.Role `json:"data"`
	}](t, resp)

	resp = c.put("/v1/roles/"+role.Data.ID+"/permissions", map[string]any{
		"permission_keys": []string{auth.PermissionWarehousesRead, auth.PermissionLocationsRead},
	}, hdr)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set permissions status: %d", resp.StatusCode)
	}
	granted := decode[struct {
		Data []auth.Permission `json:"data"`
	}](t, resp)
	if len(granted.Data) != 2 {
		t.Fatalf("expected 2 grants, got %d", len(granted.Data))
	}

	resp = c.put("/v1/roles/"+role.Data.ID+"/permissions", map[string]any{
		"permission_keys": []string{"no.such.permission"},
	}, hdr)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown permission key should 404, got %d", resp.StatusCode)
	}

	// Replace with the empty set clears all grants.
	resp2 := c.put("/v1/roles/"+role.Data.ID+"/permissions", map[string]any{
		"permission_keys": []string{},
	}, hdr)
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("clear permissions status: %d", resp2.StatusCode)
	}
	cleared := decode[struct {
		Data []auth.Permission `json:"data"`
	}](t, resp2)
	if len(cleared.Data) != 0 {
		t.Fatalf("expected empty grant set, got %d", len(cleared.Data))
	}

	resp3 := c.delete("/v1/roles/"+role.Data.ID, hdr)
	if resp3.StatusCode != http.StatusOK {
		t.Fatalf("delete role status: %d", resp3.StatusCode)
	}
	resp3.Body.Close()

	resp4 := c.get("/v1/roles/"+role.Data.ID, nil, hdr)
	defer resp4.Body.Close()
	if resp4.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted role should 404, got %d", resp4.StatusCode)
	}
}

func TestPermissionCatalogIsComplete(t *testing.T) {
	c := newTestAPI(t)
	tokens := c.seedOperator("admin", allPermissionKeys())

	resp := c.get("/v1/permissions", nil, bearer(tokens.AccessToken))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("catalog status: %d", resp.StatusCode)
	}
	catalog := decode[struct {
		Data []auth.Permission `json:"data"`
	}](t, resp)
	if len(catalog.Data) != len(auth.BuiltinPermissions) {
		t.Fatalf("catalog size = %d, want %d", len(catalog.Data), len(auth.BuiltinPermissions))
	}
}

func TestUserRoleAssignmentGrantsAccessImmediately(t *testing.T) {
	c := newTestAPI(t)
	tokens := c.seedOperator("admin", allPermissionKeys())
	hdr := bearer(tokens.AccessToken)

	viewerTokens := c.seedOperator("late-viewer", nil)

	resp := c.get("/v1/users", nil, bearer(viewerTokens.AccessToken))
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 before grant, got %d", resp.StatusCode)
	}

	role := decode[struct {
		Data auth.Role `json:"data"`
	}](t, c.post("/v1/roles", map[string]any{"name": "user-viewer"}, hdr))
	resp = c.put("/v1/roles/"+role.Data.ID+"/permissions", map[string]any{
		"permission_keys": []string{auth.PermissionUsersRead},
	}, hdr)
	resp.Body.Close()

	var viewerID string
	users := decode[struct {
		Data []auth.User `json:"data"`
	}](t, c.get("/v1/users", url.Values{"limit": {"100"}}, hdr))
	for _, u := range users.Data {
		if u.Username == "late-viewer" {
			viewerID = u.ID
		}
	}
	if viewerID == "" {
		t.Fatalf("seeded viewer not listed")
	}

	resp = c.put("/v1/users/"+viewerID+"/roles", map[string]any{"role_ids": []string{role.Data.ID}}, hdr)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("assign roles status: %d", resp.StatusCode)
	}

	// Permissions resolve live per request, so the existing token now works.
	resp = c.get("/v1/users", nil, bearer(viewerTokens.AccessToken))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after grant, got %d", resp.StatusCode)
	}
}

func TestListUsersPaginationMeta(t *testing.T) {
	c := newTestAPI(t)
	tokens := c.seedOperator("admin", allPermissionKeys())
	hdr := bearer(tokens.AccessToken)

	for _, name := range []string{"pag-a", "pag-b", "pag-c"} {
		resp := c.post("/v1/users", map[string]any{
			"name":     name,
			"username": name,
			"password": "hunter2hunter2",
		}, hdr)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed %s status: %d", name, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp := c.get("/v1/users", url.Values{"page": {"1"}, "limit": {"2"}}, hdr)
	page := decode[struct {
		Data []auth.User `json:"data"`
		Meta listMeta    `json:"meta"`
	}](t, resp)
	if len(page.Data) != 2 {
		t.Fatalf("expected 2 users on page, got %d", len(page.Data))
	}
	// admin + three seeded users.
	if page.Meta.Total != 4 {
		t.Fatalf("total = %d, want 4", page.Meta.Total)
	}
	if page.Meta.Page != 1 || page.Meta.Limit != 2 {
		t.Fatalf("meta = %+v", page.Meta)
	}
}

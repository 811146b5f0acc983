package httpapi

import (
	"net/http"
	"testing"

	"github.com/JuanPaGargoo/pos-core-api/internal/audit"
	"github.com/JuanPaGargoo/pos-core-api/internal/directory"
)

func TestBranchHierarchyFlow(t *testing.T) {
	c := newTestAPI(t)
	tokens := c.seedOperator("admin", allPermissionKeys())
	hdr := bearer(tokens.AccessToken)

	resp := c.post("/v1/branches", map[string]any{
		"name":    "Centro",
		"address": "Av. Principal 100",
		"phone":   "555-0100",
	}, hdr)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create branch status: %d", resp.StatusCode)
	}
	branch := decode[struct {
		Data directory.Branch `json:"data"`
	}](t, resp)

	resp = c.post("/v1/branches/"+branch.Data.ID+"/warehouses", map[string]any{
		"name":        "Bodega Norte",
		"description": "Dry goods",
	}, hdr)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create warehouse status: %d", resp.StatusCode)
	}
	wh := decode[struct {
		Data directory.Warehouse `json:"data"`
	}](t, resp)
	if wh.Data.BranchID != branch.Data.ID {
		t.Fatalf("warehouse bound to %q, want %q", wh.Data.BranchID, branch.Data.ID)
	}

	resp = c.post("/v1/warehouses/"+wh.Data.ID+"/locations", map[string]any{
		"name": "Rack A1",
		"code": "A1",
	}, hdr)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create location status: %d", resp.StatusCode)
	}
	loc := decode[struct {
		Data directory.StorageLocation `json:"data"`
	}](t, resp)

	resp = c.get("/v1/warehouses/"+wh.Data.ID+"/locations", nil, hdr)
	listed := decode[struct {
		Data []directory.StorageLocation `json:"data"`
		Meta listMeta                    `json:"meta"`
	}](t, resp)
	if len(listed.Data) != 1 || listed.Data[0].ID != loc.Data.ID {
		t.Fatalf("unexpected location listing: %+v", listed.Data)
	}

	// A populated branch cannot be removed.
	resp = c.delete("/v1/branches/"+branch.Data.ID, hdr)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("delete populated branch should 409, got %d", resp.StatusCode)
	}

	resp = c.delete("/v1/locations/"+loc.Data.ID, hdr)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete location status: %d", resp.StatusCode)
	}
	resp = c.delete("/v1/warehouses/"+wh.Data.ID, hdr)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete warehouse status: %d", resp.StatusCode)
	}
	resp = c.delete("/v1/branches/"+branch.Data.ID, hdr)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete empty branch status: %d", resp.StatusCode)
	}
}

func TestWarehouseNamesScopedToBranch(t *testing.T) {
	c := newTestAPI(t)
	tokens := c.seedOperator("admin", allPermissionKeys())
	hdr := bearer(tokens.AccessToken)

	first := decode[struct {
		Data directory.Branch `json:"data"`
	}](t, c.post("/v1/branches", map[string]any{"name": "Norte"}, hdr))
	second := decode[struct {
		Data directory.Branch `json:"data"`
	}](t, c.post("/v1/branches", map[string]any{"name": "Sur"}, hdr))

	resp := c.post("/v1/branches/"+first.Data.ID+"/warehouses", map[string]any{"name": "Principal"}, hdr)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first warehouse status: %d", resp.StatusCode)
	}

	// Same name in another branch is fine.
	resp = c.post("/v1/branches/"+second.Data.ID+"/warehouses", map[string]any{"name": "Principal"}, hdr)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("same name across branches should succeed, got %d", resp.StatusCode)
	}

	// Duplicate within the same branch conflicts.
	resp = c.post("/v1/branches/"+first.Data.ID+"/warehouses", map[string]any{"name": "Principal"}, hdr)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate within branch should 409, got %d", resp.StatusCode)
	}
}

func TestWarehouseUnderUnknownBranch(t *testing.T) {
	c := newTestAPI(t)
	tokens := c.seedOperator("admin", allPermissionKeys())
	hdr := bearer(tokens.AccessToken)

	resp := c.post("/v1/branches/no-such-branch/warehouses", map[string]any{"name": "Orphan"}, hdr)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	resp2 := c.get("/v1/branches/no-such-branch/warehouses", nil, hdr)
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Fatalf("listing under unknown branch should 404, got %d", resp2.StatusCode)
	}
}

func TestAuditTrailRecordsMutations(t *testing.T) {
	c := newTestAPI(t)
	tokens := c.seedOperator("admin", allPermissionKeys())
	hdr := bearer(tokens.AccessToken)

	resp := c.post("/v1/branches", map[string]any{"name": "Audited"}, hdr)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create branch status: %d", resp.StatusCode)
	}

	resp = c.get("/v1/audit", nil, hdr)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("audit status: %d", resp.StatusCode)
	}
	entries := decode[struct {
		Data []audit.Entry `json:"data"`
		Meta listMeta      `json:"meta"`
	}](t, resp)
	if len(entries.Data) == 0 {
		t.Fatalf("expected at least one audit entry")
	}
	var found bool
	for _, e := range entries.Data {
		if e.Action == "branch.create" && e.EntityType == "branch" {
			found = true
			if e.ActorID == "" {
				t.Fatalf("audit entry missing actor")
			}
			if e.RequestID == "" {
				t.Fatalf("audit entry missing request id")
			}
		}
	}
	if !found {
		t.Fatalf("branch.create entry not recorded, got %+v", entries.Data)
	}
}

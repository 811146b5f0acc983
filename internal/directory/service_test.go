package directory

import (
	"context"
	"errors"
	"testing"
)

func newSvc(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(NewMemoryStore())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestBranchLifecycle(t *testing.T) {
	svc := newSvc(t)
	ctx := context.Background()

	b, err := svc.CreateBranch(ctx, CreateBranchInput{Name: "  Centro  ", Address: " Av. Juarez 10 "})
	if err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if b.Name != "Centro" || b.Address != "Av. Juarez 10" {
		t.Fatalf("input not trimmed: %+v", b)
	}
	if b.ID == "" {
		t.Fatalf("expected an id")
	}

	if _, err := svc.CreateBranch(ctx, CreateBranchInput{Name: "Centro"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate branch name accepted: %v", err)
	}
	if _, err := svc.CreateBranch(ctx, CreateBranchInput{Name: "  "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank branch name accepted: %v", err)
	}

	phone := "555-0101"
	updated, err := svc.UpdateBranch(ctx, b.ID, BranchUpdate{Phone: &phone})
	if err != nil {
		t.Fatalf("UpdateBranch: %v", err)
	}
	if updated.Phone != "555-0101" || updated.Name != "Centro" {
		t.Fatalf("partial update wrong: %+v", updated)
	}

	if err := svc.DeleteBranch(ctx, b.ID); err != nil {
		t.Fatalf("DeleteBranch: %v", err)
	}
	if _, err := svc.GetBranch(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted branch still exists: %v", err)
	}
}

func TestWarehouseScopedToBranch(t *testing.T) {
	svc := newSvc(t)
	ctx := context.Background()

	centro, err := svc.CreateBranch(ctx, CreateBranchInput{Name: "Centro"})
	if err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	norte, err := svc.CreateBranch(ctx, CreateBranchInput{Name: "Norte"})
	if err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	if _, err := svc.CreateWarehouse(ctx, CreateWarehouseInput{BranchID: "missing", Name: "Main"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("warehouse under missing branch accepted: %v", err)
	}

	w1, err := svc.CreateWarehouse(ctx, CreateWarehouseInput{BranchID: centro.ID, Name: "Main"})
	if err != nil {
		t.Fatalf("CreateWarehouse: %v", err)
	}
	// Same name under another branch is fine; same branch conflicts.
	if _, err := svc.CreateWarehouse(ctx, CreateWarehouseInput{BranchID: norte.ID, Name: "Main"}); err != nil {
		t.Fatalf("name should be unique per branch only: %v", err)
	}
	if _, err := svc.CreateWarehouse(ctx, CreateWarehouseInput{BranchID: centro.ID, Name: "Main"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate warehouse name in branch accepted: %v", err)
	}

	list, total, err := svc.ListWarehouses(ctx, centro.ID, 1, 50)
	if err != nil {
		t.Fatalf("ListWarehouses: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].ID != w1.ID {
		t.Fatalf("unexpected listing: total=%d %+v", total, list)
	}

	// A branch with warehouses cannot be deleted.
	if err := svc.DeleteBranch(ctx, centro.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("non-empty branch deleted: %v", err)
	}
	if err := svc.DeleteWarehouse(ctx, w1.ID); err != nil {
		t.Fatalf("DeleteWarehouse: %v", err)
	}
	if err := svc.DeleteBranch(ctx, centro.ID); err != nil {
		t.Fatalf("DeleteBranch after emptying: %v", err)
	}
}

func TestLocationScopedToWarehouse(t *testing.T) {
	svc := newSvc(t)
	ctx := context.Background()

	b, err := svc.CreateBranch(ctx, CreateBranchInput{Name: "Centro"})
	if err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	w, err := svc.CreateWarehouse(ctx, CreateWarehouseInput{BranchID: b.ID, Name: "Main"})
	if err != nil {
		t.Fatalf("CreateWarehouse: %v", err)
	}

	l, err := svc.CreateLocation(ctx, CreateLocationInput{WarehouseID: w.ID, Name: "Aisle 1", Code: "A1"})
	if err != nil {
		t.Fatalf("CreateLocation: %v", err)
	}
	if _, err := svc.CreateLocation(ctx, CreateLocationInput{WarehouseID: w.ID, Name: "Aisle 1"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate location name in warehouse accepted: %v", err)
	}
	if _, err := svc.CreateLocation(ctx, CreateLocationInput{WarehouseID: "missing", Name: "Aisle 2"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("location under missing warehouse accepted: %v", err)
	}

	code := "A1-REV"
	updated, err := svc.UpdateLocation(ctx, l.ID, LocationUpdate{Code: &code})
	if err != nil {
		t.Fatalf("UpdateLocation: %v", err)
	}
	if updated.Code != "A1-REV" || updated.Name != "Aisle 1" {
		t.Fatalf("partial update wrong: %+v", updated)
	}

	// A warehouse with locations cannot be deleted.
	if err := svc.DeleteWarehouse(ctx, w.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("non-empty warehouse deleted: %v", err)
	}
	if err := svc.DeleteLocation(ctx, l.ID); err != nil {
		t.Fatalf("DeleteLocation: %v", err)
	}
	if err := svc.DeleteWarehouse(ctx, w.ID); err != nil {
		t.Fatalf("DeleteWarehouse after emptying: %v", err)
	}
}

func TestListBranchesPagination(t *testing.T) {
	svc := newSvc(t)
	ctx := context.Background()

	for _, name := range []string{"Centro", "Norte", "Sur"} {
		if _, err := svc.CreateBranch(ctx, CreateBranchInput{Name: name}); err != nil {
			t.Fatalf("CreateBranch %s: %v", name, err)
		}
	}
	list, total, err := svc.ListBranches(ctx, 1, 2)
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	if total != 3 || len(list) != 2 {
		t.Fatalf("page 1: total=%d len=%d", total, len(list))
	}
	if list[0].Name != "Centro" || list[1].Name != "Norte" {
		t.Fatalf("expected name order, got %+v", list)
	}
	list, _, err = svc.ListBranches(ctx, 2, 2)
	if err != nil || len(list) != 1 || list[0].Name != "Sur" {
		t.Fatalf("page 2: %+v err=%v", list, err)
	}
}

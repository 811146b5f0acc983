package directory

import "context"

// Store describes the persistence operations for the location hierarchy.
// Implementations map uniqueness violations to ErrConflict, missing rows and
// missing parents to ErrNotFound, and deletes blocked by children to
// ErrConflict.
type Store interface {
	CreateBranch(ctx context.Context, b Branch) (Branch, error)
	GetBranch(ctx context.Context, branchID string) (Branch, error)
	ListBranches(ctx context.Context, page, limit int) ([]Branch, int, error)
	UpdateBranch(ctx context.Context, branchID string, upd BranchUpdate) (Branch, error)
	DeleteBranch(ctx context.Context, branchID string) error

	CreateWarehouse(ctx context.Context, w Warehouse) (Warehouse, error)
	GetWarehouse(ctx context.Context, warehouseID string) (Warehouse, error)
	ListWarehouses(ctx context.Context, branchID string, page, limit int) ([]Warehouse, int, error)
	UpdateWarehouse(ctx context.Context, warehouseID string, upd WarehouseUpdate) (Warehouse, error)
	DeleteWarehouse(ctx context.Context, warehouseID string) error

	CreateLocation(ctx context.Context, l StorageLocation) (StorageLocation, error)
	GetLocation(ctx context.Context, locationID string) (StorageLocation, error)
	ListLocations(ctx context.Context, warehouseID string, page, limit int) ([]StorageLocation, int, error)
	UpdateLocation(ctx context.Context, locationID string, upd LocationUpdate) (StorageLocation, error)
	DeleteLocation(ctx context.Context, locationID string) error
}

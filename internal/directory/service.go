package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service validates and normalizes input before delegating to the Store.
type Service struct {
	store Store
}

// NewService constructs the directory service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("directory store is required")
	}
	return &Service{store: store}, nil
}

// CreateBranchInput carries the fields accepted on branch creation.
type CreateBranchInput struct {
	Name    string
	Address string
	Phone   string
}

func (s *Service) CreateBranch(ctx context.Context, in CreateBranchInput) (Branch, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Branch{}, fmt.Errorf("%w: branch name is required", ErrInvalidInput)
	}
	return s.store.CreateBranch(ctx, Branch{
		Name:    name,
		Address: strings.TrimSpace(in.Address),
		Phone:   strings.TrimSpace(in.Phone),
	})
}

func (s *Service) GetBranch(ctx context.Context, branchID string) (Branch, error) {
	branchID = strings.TrimSpace(branchID)
	if branchID == "" {
		return Branch{}, fmt.Errorf("%w: branch_id is required", ErrInvalidInput)
	}
	return s.store.GetBranch(ctx, branchID)
}

func (s *Service) ListBranches(ctx context.Context, page, limit int) ([]Branch, int, error) {
	page, limit = normalizePage(page, limit)
	return s.store.ListBranches(ctx, page, limit)
}

func (s *Service) UpdateBranch(ctx context.Context, branchID string, upd BranchUpdate) (Branch, error) {
	branchID = strings.TrimSpace(branchID)
	if branchID == "" {
		return Branch{}, fmt.Errorf("%w: branch_id is required", ErrInvalidInput)
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return Branch{}, fmt.Errorf("%w: branch name is required", ErrInvalidInput)
		}
		upd.Name = &name
	}
	if upd.Address != nil {
		addr := strings.TrimSpace(*upd.Address)
		upd.Address = &addr
	}
	if upd.Phone != nil {
		phone := strings.TrimSpace(*upd.Phone)
		upd.Phone = &phone
	}
	return s.store.UpdateBranch(ctx, branchID, upd)
}

// DeleteBranch removes an empty branch. A branch that still has warehouses
// is a conflict, not a cascade.
func (s *Service) DeleteBranch(ctx context.Context, branchID string) error {
	branchID = strings.TrimSpace(branchID)
	if branchID == "" {
		return fmt.Errorf("%w: branch_id is required", ErrInvalidInput)
	}
	return s.store.DeleteBranch(ctx, branchID)
}

// CreateWarehouseInput carries the fields accepted on warehouse creation.
type CreateWarehouseInput struct {
	BranchID    string
	Name        string
	Description string
}

func (s *Service) CreateWarehouse(ctx context.Context, in CreateWarehouseInput) (Warehouse, error) {
	branchID := strings.TrimSpace(in.BranchID)
	if branchID == "" {
		return Warehouse{}, fmt.Errorf("%w: branch_id is required", ErrInvalidInput)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Warehouse{}, fmt.Errorf("%w: warehouse name is required", ErrInvalidInput)
	}
	return s.store.CreateWarehouse(ctx, Warehouse{
		BranchID:    branchID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
	})
}

func (s *Service) GetWarehouse(ctx context.Context, warehouseID string) (Warehouse, error) {
	warehouseID = strings.TrimSpace(warehouseID)
	if warehouseID == "" {
		return Warehouse{}, fmt.Errorf("%w: warehouse_id is required", ErrInvalidInput)
	}
	return s.store.GetWarehouse(ctx, warehouseID)
}

func (s *Service) ListWarehouses(ctx context.Context, branchID string, page, limit int) ([]Warehouse, int, error) {
	branchID = strings.TrimSpace(branchID)
	if branchID == "" {
		return nil, 0, fmt.Errorf("%w: branch_id is required", ErrInvalidInput)
	}
	page, limit = normalizePage(page, limit)
	return s.store.ListWarehouses(ctx, branchID, page, limit)
}

func (s *Service) UpdateWarehouse(ctx context.Context, warehouseID string, upd WarehouseUpdate) (Warehouse, error) {
	warehouseID = strings.TrimSpace(warehouseID)
	if warehouseID == "" {
		return Warehouse{}, fmt.Errorf("%w: warehouse_id is required", ErrInvalidInput)
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return Warehouse{}, fmt.Errorf("%w: warehouse name is required", ErrInvalidInput)
		}
		upd.Name = &name
	}
	if upd.Description != nil {
		desc := strings.TrimSpace(*upd.Description)
		upd.Description = &desc
	}
	return s.store.UpdateWarehouse(ctx, warehouseID, upd)
}

func (s *Service) DeleteWarehouse(ctx context.Context, warehouseID string) error {
	warehouseID = strings.TrimSpace(warehouseID)
	if warehouseID == "" {
		return fmt.Errorf("%w: warehouse_id is required", ErrInvalidInput)
	}
	return s.store.DeleteWarehouse(ctx, warehouseID)
}

// CreateLocationInput carries the fields accepted on location creation.
type CreateLocationInput struct {
	WarehouseID string
	Name        string
	Code        string
}

func (s *Service) CreateLocation(ctx context.Context, in CreateLocationInput) (StorageLocation, error) {
	warehouseID := strings.TrimSpace(in.WarehouseID)
	if warehouseID == "" {
		return StorageLocation{}, fmt.Errorf("%w: warehouse_id is required", ErrInvalidInput)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return StorageLocation{}, fmt.Errorf("%w: location name is required", ErrInvalidInput)
	}
	return s.store.CreateLocation(ctx, StorageLocation{
		WarehouseID: warehouseID,
		Name:        name,
		Code:        strings.TrimSpace(in.Code),
	})
}

func (s *Service) GetLocation(ctx context.Context, locationID string) (StorageLocation, error) {
	locationID = strings.TrimSpace(locationID)
	if locationID == "" {
		return StorageLocation{}, fmt.Errorf("%w: location_id is required", ErrInvalidInput)
	}
	return s.store.GetLocation(ctx, locationID)
}

func (s *Service) ListLocations(ctx context.Context, warehouseID string, page, limit int) ([]StorageLocation, int, error) {
	warehouseID = strings.TrimSpace(warehouseID)
	if warehouseID == "" {
		return nil, 0, fmt.Errorf("%w: warehouse_id is required", ErrInvalidInput)
	}
	page, limit = normalizePage(page, limit)
	return s.store.ListLocations(ctx, warehouseID, page, limit)
}

func (s *Service) UpdateLocation(ctx context.Context, locationID string, upd LocationUpdate) (StorageLocation, error) {
	locationID = strings.TrimSpace(locationID)
	if locationID == "" {
		return StorageLocation{}, fmt.Errorf("%w: location_id is required", ErrInvalidInput)
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return StorageLocation{}, fmt.Errorf("%w: location name is required", ErrInvalidInput)
		}
		upd.Name = &name
	}
	if upd.Code != nil {
		code := strings.TrimSpace(*upd.Code)
		upd.Code = &code
	}
	return s.store.UpdateLocation(ctx, locationID, upd)
}

func (s *Service) DeleteLocation(ctx context.Context, locationID string) error {
	locationID = strings.TrimSpace(locationID)
	if locationID == "" {
		return fmt.Errorf("%w: location_id is required", ErrInvalidInput)
	}
	return s.store.DeleteLocation(ctx, locationID)
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return page, limit
}

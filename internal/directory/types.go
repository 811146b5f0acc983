// Package directory manages the physical hierarchy the back office operates
// over: branches contain warehouses, warehouses contain storage locations.
package directory

import "time"

// Branch is a physical store or office. Branch names are unique.
type Branch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Warehouse belongs to exactly one branch. Names are unique within the
// branch.
type Warehouse struct {
	ID          string    `json:"id"`
	BranchID    string    `json:"branch_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StorageLocation is a shelf, rack or bin inside a warehouse. Names are
// unique within the warehouse.
type StorageLocation struct {
	ID          string    `json:"id"`
	WarehouseID string    `json:"warehouse_id"`
	Name        string    `json:"name"`
	Code        string    `json:"code,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BranchUpdate mutates a subset of branch fields. Nil fields are untouched.
type BranchUpdate struct {
	Name    *string
	Address *string
	Phone   *string
}

// WarehouseUpdate mutates a subset of warehouse fields.
type WarehouseUpdate struct {
	Name        *string
	Description *string
}

// LocationUpdate mutates a subset of storage location fields.
type LocationUpdate struct {
	Name *string
	Code *string
}

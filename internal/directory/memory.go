package directory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/JuanPaGargoo/pos-core-api/internal/ids"
)

// MemoryStore is a process-local Store used by tests and by the server when
// no database DSN is configured.
type MemoryStore struct {
	mu         sync.RWMutex
	branches   map[string]Branch
	warehouses map[string]Warehouse
	locations  map[string]StorageLocation
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		branches:   make(map[string]Branch),
		warehouses: make(map[string]Warehouse),
		locations:  make(map[string]StorageLocation),
	}
}

// BranchName resolves a branch id to its name. Used by the auth memory
// store to label branch assignments.
func (m *MemoryStore) BranchName(branchID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.branches[branchID].Name
}

func (m *MemoryStore) CreateBranch(_ context.Context, b Branch) (Branch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.branches {
		if existing.Name == b.Name {
			return Branch{}, fmt.Errorf("%w: branch name already in use", ErrConflict)
		}
	}
	now := time.Now().UTC()
	b.ID = ids.New()
	b.CreatedAt = now
	b.UpdatedAt = now
	m.branches[b.ID] = b
	return b, nil
}

func (m *MemoryStore) GetBranch(_ context.Context, branchID string) (Branch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.branches[branchID]
	if !ok {
		return Branch{}, fmt.Errorf("%w: branch %s", ErrNotFound, branchID)
	}
	return b, nil
}

func (m *MemoryStore) ListBranches(_ context.Context, page, limit int) ([]Branch, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]Branch, 0, len(m.branches))
	for _, b := range m.branches {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	return pageSlice(all, page, limit), total, nil
}

func (m *MemoryStore) UpdateBranch(_ context.Context, branchID string, upd BranchUpdate) (Branch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.branches[branchID]
	if !ok {
		return Branch{}, fmt.Errorf("%w: branch %s", ErrNotFound, branchID)
	}
	if upd.Name != nil {
		for id, other := range m.branches {
			if id != branchID && other.Name == *upd.Name {
				return Branch{}, fmt.Errorf("%w: branch name already in use", ErrConflict)
			}
		}
		b.Name = *upd.Name
	}
	if upd.Address != nil {
		b.Address = *upd.Address
	}
	if upd.Phone != nil {
		b.Phone = *upd.Phone
	}
	b.UpdatedAt = time.Now().UTC()
	m.branches[branchID] = b
	return b, nil
}

func (m *MemoryStore) DeleteBranch(_ context.Context, branchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.branches[branchID]; !ok {
		return fmt.Errorf("%w: branch %s", ErrNotFound, branchID)
	}
	for _, w := range m.warehouses {
		if w.BranchID == branchID {
			return fmt.Errorf("%w: branch still has warehouses", ErrConflict)
		}
	}
	delete(m.branches, branchID)
	return nil
}

func (m *MemoryStore) CreateWarehouse(_ context.Context, w Warehouse) (Warehouse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.branches[w.BranchID]; !ok {
		return Warehouse{}, fmt.Errorf("%w: branch %s", ErrNotFound, w.BranchID)
	}
	for _, existing := range m.warehouses {
		if existing.BranchID == w.BranchID && existing.Name == w.Name {
			return Warehouse{}, fmt.Errorf("%w: warehouse name already in use in branch", ErrConflict)
		}
	}
	now := time.Now().UTC()
	w.ID = ids.New()
	w.CreatedAt = now
	w.UpdatedAt = now
	m.warehouses[w.ID] = w
	return w, nil
}

func (m *MemoryStore) GetWarehouse(_ context.Context, warehouseID string) (Warehouse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.warehouses[warehouseID]
	if !ok {
		return Warehouse{}, fmt.Errorf("%w: warehouse %s", ErrNotFound, warehouseID)
	}
	return w, nil
}

func (m *MemoryStore) ListWarehouses(_ context.Context, branchID string, page, limit int) ([]Warehouse, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.branches[branchID]; !ok {
		return nil, 0, fmt.Errorf("%w: branch %s", ErrNotFound, branchID)
	}
	all := make([]Warehouse, 0)
	for _, w := range m.warehouses {
		if w.BranchID == branchID {
			all = append(all, w)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	return pageSlice(all, page, limit), total, nil
}

func (m *MemoryStore) UpdateWarehouse(_ context.Context, warehouseID string, upd WarehouseUpdate) (Warehouse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.warehouses[warehouseID]
	if !ok {
		return Warehouse{}, fmt.Errorf("%w: warehouse %s", ErrNotFound, warehouseID)
	}
	if upd.Name != nil {
		for id, other := range m.warehouses {
			if id != warehouseID && other.BranchID == w.BranchID && other.Name == *upd.Name {
				return Warehouse{}, fmt.Errorf("%w: warehouse name already in use in branch", ErrConflict)
			}
		}
		w.Name = *upd.Name
	}
	if upd.Description != nil {
		w.Description = *upd.Description
	}
	w.UpdatedAt = time.Now().UTC()
	m.warehouses[warehouseID] = w
	return w, nil
}

func (m *MemoryStore) DeleteWarehouse(_ context.Context, warehouseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.warehouses[warehouseID]; !ok {
		return fmt.Errorf("%w: warehouse %s", ErrNotFound, warehouseID)
	}
	for _, l := range m.locations {
		if l.WarehouseID == warehouseID {
			return fmt.Errorf("%w: warehouse still has locations", ErrConflict)
		}
	}
	delete(m.warehouses, warehouseID)
	return nil
}

func (m *MemoryStore) CreateLocation(_ context.Context, l StorageLocation) (StorageLocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.warehouses[l.WarehouseID]; !ok {
		return StorageLocation{}, fmt.Errorf("%w: warehouse %s", ErrNotFound, l.WarehouseID)
	}
	for _, existing := range m.locations {
		if existing.WarehouseID == l.WarehouseID && existing.Name == l.Name {
			return StorageLocation{}, fmt.Errorf("%w: location name already in use in warehouse", ErrConflict)
		}
	}
	now := time.Now().UTC()
	l.ID = ids.New()
	l.CreatedAt = now
	l.UpdatedAt = now
	m.locations[l.ID] = l
	return l, nil
}

func (m *MemoryStore) GetLocation(_ context.Context, locationID string) (StorageLocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.locations[locationID]
	if !ok {
		return StorageLocation{}, fmt.Errorf("%w: location %s", ErrNotFound, locationID)
	}
	return l, nil
}

func (m *MemoryStore) ListLocations(_ context.Context, warehouseID string, page, limit int) ([]StorageLocation, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.warehouses[warehouseID]; !ok {
		return nil, 0, fmt.Errorf("%w: warehouse %s", ErrNotFound, warehouseID)
	}
	all := make([]StorageLocation, 0)
	for _, l := range m.locations {
		if l.WarehouseID == warehouseID {
			all = append(all, l)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	return pageSlice(all, page, limit), total, nil
}

func (m *MemoryStore) UpdateLocation(_ context.Context, locationID string, upd LocationUpdate) (StorageLocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locations[locationID]
	if !ok {
		return StorageLocation{}, fmt.Errorf("%w: location %s", ErrNotFound, locationID)
	}
	if upd.Name != nil {
		for id, other := range m.locations {
			if id != locationID && other.WarehouseID == l.WarehouseID && other.Name == *upd.Name {
				return StorageLocation{}, fmt.Errorf("%w: location name already in use in warehouse", ErrConflict)
			}
		}
		l.Name = *upd.Name
	}
	if upd.Code != nil {
		l.Code = *upd.Code
	}
	l.UpdatedAt = time.Now().UTC()
	m.locations[locationID] = l
	return l, nil
}

func (m *MemoryStore) DeleteLocation(_ context.Context, locationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.locations[locationID]; !ok {
		return fmt.Errorf("%w: location %s", ErrNotFound, locationID)
	}
	delete(m.locations, locationID)
	return nil
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

package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/JuanPaGargoo/pos-core-api/internal/directory"
	"github.com/JuanPaGargoo/pos-core-api/internal/ids"
)

var _ directory.Store = (*Store)(nil)

func (s *Store) CreateBranch(ctx context.Context, b directory.Branch) (directory.Branch, error) {
	if s.db == nil {
		return directory.Branch{}, errors.New("database connection unavailable")
	}
	var out directory.Branch
	err := s.db.QueryRowContext(ctx, `
		insert into branches (id, name, address, phone)
		values ($1, $2, $3, $4)
		returning id, name, coalesce(address,''), coalesce(phone,''), created_at, updated_at
	`, ids.New(), b.Name, b.Address, b.Phone).Scan(&out.ID, &out.Name, &out.Address, &out.Phone, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return directory.Branch{}, directory.ErrConflict
		}
		return directory.Branch{}, err
	}
	return out, nil
}

func (s *Store) GetBranch(ctx context.Context, branchID string) (directory.Branch, error) {
	if s.db == nil {
		return directory.Branch{}, errors.New("database connection unavailable")
	}
	var b directory.Branch
	err := s.db.QueryRowContext(ctx, `
		select id, name, coalesce(address,''), coalesce(phone,''), created_at, updated_at
		from branches
		where id = $1
	`, branchID).Scan(&b.ID, &b.Name, &b.Address, &b.Phone, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.Branch{}, directory.ErrNotFound
	}
	if err != nil {
		return directory.Branch{}, err
	}
	return b, nil
}

func (s *Store) ListBranches(ctx context.Context, page, limit int) ([]directory.Branch, int, error) {
	if s.db == nil {
		return nil, 0, errors.New("database connection unavailable")
	}
	var total int
	if err := s.db.QueryRowContext(ctx, `select count(*) from branches`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, name, coalesce(address,''), coalesce(phone,''), created_at, updated_at
		from branches
		order by name
		limit $1 offset $2
	`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	branches := []directory.Branch{}
	for rows.Next() {
		var b directory.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.Phone, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, 0, err
		}
		branches = append(branches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return branches, total, nil
}

func (s *Store) UpdateBranch(ctx context.Context, branchID string, upd directory.BranchUpdate) (directory.Branch, error) {
	if s.db == nil {
		return directory.Branch{}, errors.New("database connection unavailable")
	}
	var (
		setClauses []string
		args       []any
		idx        = 1
	)
	if upd.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", idx))
		args = append(args, *upd.Name)
		idx++
	}
	if upd.Address != nil {
		setClauses = append(setClauses, fmt.Sprintf("address = $%d", idx))
		args = append(args, *upd.Address)
		idx++
	}
	if upd.Phone != nil {
		setClauses = append(setClauses, fmt.Sprintf("phone = $%d", idx))
		args = append(args, *upd.Phone)
		idx++
	}
	if len(setClauses) > 0 {
		setClauses = append(setClauses, "updated_at = now()")
		query := fmt.Sprintf(`update branches set %s where id = $%d`, strings.Join(setClauses, ", "), idx)
		args = append(args, branchID)
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
				return directory.Branch{}, directory.ErrConflict
			}
			return directory.Branch{}, err
		}
		aff, err := res.RowsAffected()
		if err != nil {
			return directory.Branch{}, err
		}
		if aff == 0 {
			return directory.Branch{}, directory.ErrNotFound
		}
	}
	return s.GetBranch(ctx, branchID)
}

func (s *Store) DeleteBranch(ctx context.Context, branchID string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `delete from branches where id = $1`, branchID)
	if err != nil {
		// Warehouses or user assignments still reference the branch.
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return fmt.Errorf("%w: branch is still referenced", directory.ErrConflict)
		}
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return directory.ErrNotFound
	}
	return nil
}

func (s *Store) CreateWarehouse(ctx context.Context, w directory.Warehouse) (directory.Warehouse, error) {
	if s.db == nil {
		return directory.Warehouse{}, errors.New("database connection unavailable")
	}
	var out directory.Warehouse
	err := s.db.QueryRowContext(ctx, `
		insert into warehouses (id, branch_id, name, description)
		values ($1, $2, $3, $4)
		returning id, branch_id, name, coalesce(description,''), created_at, updated_at
	`, ids.New(), w.BranchID, w.Name, w.Description).Scan(&out.ID, &out.BranchID, &out.Name, &out.Description, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return directory.Warehouse{}, directory.ErrConflict
			case pgErrForeignKeyViolation:
				return directory.Warehouse{}, directory.ErrNotFound
			}
		}
		return directory.Warehouse{}, err
	}
	return out, nil
}

func (s *Store) GetWarehouse(ctx context.Context, warehouseID string) (directory.Warehouse, error) {
	if s.db == nil {
		return directory.Warehouse{}, errors.New("database connection unavailable")
	}
	var w directory.Warehouse
	err := s.db.QueryRowContext(ctx, `
		select id, branch_id, name, coalesce(description,''), created_at, updated_at
		from warehouses
		where id = $1
	`, warehouseID).Scan(&w.ID, &w.BranchID, &w.Name, &w.Description, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.Warehouse{}, directory.ErrNotFound
	}
	if err != nil {
		return directory.Warehouse{}, err
	}
	return w, nil
}

func (s *Store) ListWarehouses(ctx context.Context, branchID string, page, limit int) ([]directory.Warehouse, int, error) {
	if s.db == nil {
		return nil, 0, errors.New("database connection unavailable")
	}
	var exists int
	if err := s.db.QueryRowContext(ctx, `select 1 from branches where id = $1`, branchID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, directory.ErrNotFound
		}
		return nil, 0, err
	}
	var total int
	if err := s.db.QueryRowContext(ctx, `select count(*) from warehouses where branch_id = $1`, branchID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, branch_id, name, coalesce(description,''), created_at, updated_at
		from warehouses
		where branch_id = $1
		order by name
		limit $2 offset $3
	`, branchID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	warehouses := []directory.Warehouse{}
	for rows.Next() {
		var w directory.Warehouse
		if err := rows.Scan(&w.ID, &w.BranchID, &w.Name, &w.Description, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, 0, err
		}
		warehouses = append(warehouses, w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return warehouses, total, nil
}

func (s *Store) UpdateWarehouse(ctx context.Context, warehouseID string, upd directory.WarehouseUpdate) (directory.Warehouse, error) {
	if s.db == nil {
		return directory.Warehouse{}, errors.New("database connection unavailable")
	}
	var (
		setClauses []string
		args       []any
		idx        = 1
	)
	if upd.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", idx))
		args = append(args, *upd.Name)
		idx++
	}
	if upd.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", idx))
		args = append(args, *upd.Description)
		idx++
	}
	if len(setClauses) > 0 {
		setClauses = append(setClauses, "updated_at = now()")
		query := fmt.Sprintf(`update warehouses set %s where id = $%d`, strings.Join(setClauses, ", "), idx)
		args = append(args, warehouseID)
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
				return directory.Warehouse{}, directory.ErrConflict
			}
			return directory.Warehouse{}, err
		}
		aff, err := res.RowsAffected()
		if err != nil {
			return directory.Warehouse{}, err
		}
		if aff == 0 {
			return directory.Warehouse{}, directory.ErrNotFound
		}
	}
	return s.GetWarehouse(ctx, warehouseID)
}

func (s *Store) DeleteWarehouse(ctx context.Context, warehouseID string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `delete from warehouses where id = $1`, warehouseID)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return fmt.Errorf("%w: warehouse is still referenced", directory.ErrConflict)
		}
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return directory.ErrNotFound
	}
	return nil
}

func (s *Store) CreateLocation(ctx context.Context, l directory.StorageLocation) (directory.StorageLocation, error) {
	if s.db == nil {
		return directory.StorageLocation{}, errors.New("database connection unavailable")
	}
	var out directory.StorageLocation
	err := s.db.QueryRowContext(ctx, `
		insert into storage_locations (id, warehouse_id, name, code)
		values ($1, $2, $3, $4)
		returning id, warehouse_id, name, coalesce(code,''), created_at, updated_at
	`, ids.New(), l.WarehouseID, l.Name, l.Code).Scan(&out.ID, &out.WarehouseID, &out.Name, &out.Code, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return directory.StorageLocation{}, directory.ErrConflict
			case pgErrForeignKeyViolation:
				return directory.StorageLocation{}, directory.ErrNotFound
			}
		}
		return directory.StorageLocation{}, err
	}
	return out, nil
}

func (s *Store) GetLocation(ctx context.Context, locationID string) (directory.StorageLocation, error) {
	if s.db == nil {
		return directory.StorageLocation{}, errors.New("database connection unavailable")
	}
	var l directory.StorageLocation
	err := s.db.QueryRowContext(ctx, `
		select id, warehouse_id, name, coalesce(code,''), created_at, updated_at
		from storage_locations
		where id = $1
	`, locationID).Scan(&l.ID, &l.WarehouseID, &l.Name, &l.Code, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.StorageLocation{}, directory.ErrNotFound
	}
	if err != nil {
		return directory.StorageLocation{}, err
	}
	return l, nil
}

func (s *Store) ListLocations(ctx context.Context, warehouseID string, page, limit int) ([]directory.StorageLocation, int, error) {
	if s.db == nil {
		return nil, 0, errors.New("database connection unavailable")
	}
	var exists int
	if err := s.db.QueryRowContext(ctx, `select 1 from warehouses where id = $1`, warehouseID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, directory.ErrNotFound
		}
		return nil, 0, err
	}
	var total int
	if err := s.db.QueryRowContext(ctx, `select count(*) from storage_locations where warehouse_id = $1`, warehouseID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, warehouse_id, name, coalesce(code,''), created_at, updated_at
		from storage_locations
		where warehouse_id = $1
		order by name
		limit $2 offset $3
	`, warehouseID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	locations := []directory.StorageLocation{}
	for rows.Next() {
		var l directory.StorageLocation
		if err := rows.Scan(&l.ID, &l.WarehouseID, &l.Name, &l.Code, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, 0, err
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return locations, total, nil
}

func (s *Store) UpdateLocation(ctx context.Context, locationID string, upd directory.LocationUpdate) (directory.StorageLocation, error) {
	if s.db == nil {
		return directory.StorageLocation{}, errors.New("database connection unavailable")
	}
	var (
		setClauses []string
		args       []any
		idx        = 1
	)
	if upd.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", idx))
		args = append(args, *upd.Name)
		idx++
	}
	if upd.Code != nil {
		setClauses = append(setClauses, fmt.Sprintf("code = $%d", idx))
		args = append(args, *upd.Code)
		idx++
	}
	if len(setClauses) > 0 {
		setClauses = append(setClauses, "updated_at = now()")
		query := fmt.Sprintf(`update storage_locations set %s where id = $%d`, strings.Join(setClauses, ", "), idx)
		args = append(args, locationID)
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
				return directory.StorageLocation{}, directory.ErrConflict
			}
			return directory.StorageLocation{}, err
		}
		aff, err := res.RowsAffected()
		if err != nil {
			return directory.StorageLocation{}, err
		}
		if aff == 0 {
			return directory.StorageLocation{}, directory.ErrNotFound
		}
	}
	return s.GetLocation(ctx, locationID)
}

func (s *Store) DeleteLocation(ctx context.Context, locationID string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `delete from storage_locations where id = $1`, locationID)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return directory.ErrNotFound
	}
	return nil
}

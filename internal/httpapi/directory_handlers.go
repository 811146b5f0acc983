package httpapi

import (
	"errors"
	"net/http"

	"github.com/JuanPaGargoo/pos-core-api/internal/directory"
)

func handleDirectoryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, directory.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, directory.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, directory.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

type branchRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (a *API) handleCreateBranch(w http.ResponseWriter, r *http.Request) {
	var req branchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	branch, err := a.dir.CreateBranch(r.Context(), directory.CreateBranchInput{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
	})
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	a.trail.Record(r.Context(), "branch.create", "branch", branch.ID, map[string]any{"name": branch.Name})
	w.Header().Set("Location", "/v1/branches/"+branch.ID)
	writeData(w, http.StatusCreated, branch, nil)
}

func (a *API) handleGetBranch(w http.ResponseWriter, r *http.Request) {
	branch, err := a.dir.GetBranch(r.Context(), r.PathValue("id"))
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, branch, nil)
}

func (a *API) handleListBranches(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	branches, total, err := a.dir.ListBranches(r.Context(), page, limit)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	if branches == nil {
		branches = []directory.Branch{}
	}
	writeData(w, http.StatusOK, branches, listMeta{Page: page, Limit: limit, Total: total})
}

type branchUpdateRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

func (a *API) handleUpdateBranch(w http.ResponseWriter, r *http.Request) {
	var req branchUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	branch, err := a.dir.UpdateBranch(r.Context(), r.PathValue("id"), directory.BranchUpdate{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
	})
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	a.trail.Record(r.Context(), "branch.update", "branch", branch.ID, nil)
	writeData(w, http.StatusOK, branch, nil)
}

func (a *API) handleDeleteBranch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.dir.DeleteBranch(r.Context(), id); err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	a.trail.Record(r.Context(), "branch.delete", "branch", id, nil)
	writeData(w, http.StatusOK, map[string]string{"message": "branch deleted"}, nil)
}

type warehouseRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (a *API) handleCreateWarehouse(w http.ResponseWriter, r *http.Request) {
	var req warehouseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	wh, err := a.dir.CreateWarehouse(r.Context(), directory.CreateWarehouseInput{
		BranchID:    r.PathValue("id"),
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	a.trail.Record(r.Context(), "warehouse.create", "warehouse", wh.ID, map[string]any{"name": wh.Name, "branch_id": wh.BranchID})
	w.Header().Set("Location", "/v1/warehouses/"+wh.ID)
	writeData(w, http.StatusCreated, wh, nil)
}

func (a *API) handleGetWarehouse(w http.ResponseWriter, r *http.Request) {
	wh, err := a.dir.GetWarehouse(r.Context(), r.PathValue("id"))
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, wh, nil)
}

func (a *API) handleListWarehouses(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	warehouses, total, err := a.dir.ListWarehouses(r.Context(), r.PathValue("id"), page, limit)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	if warehouses == nil {
		warehouses = []directory.Warehouse{}
	}
	writeData(w, http.StatusOK, warehouses, listMeta{Page: page, Limit: limit, Total: total})
}

type warehouseUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (a *API) handleUpdateWarehouse(w http.ResponseWriter, r *http.Request) {
	var req warehouseUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	wh, err := a.dir.UpdateWarehouse(r.Context(), r.PathValue("id"), directory.WarehouseUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	a.trail.Record(r.Context(), "warehouse.update", "warehouse", wh.ID, nil)
	writeData(w, http.StatusOK, wh, nil)
}

func (a *API) handleDeleteWarehouse(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.dir.DeleteWarehouse(r.Context(), id); err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	a.trail.Record(r.Context(), "warehouse.delete", "warehouse", id, nil)
	writeData(w, http.StatusOK, map[string]string{"message": "warehouse deleted"}, nil)
}

type locationRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func (a *API) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	loc, err := a.dir.CreateLocation(r.Context(), directory.CreateLocationInput{
		WarehouseID: r.PathValue("id"),
		Name:        req.Name,
		Code:        req.Code,
	})
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	a.trail.Record(r.Context(), "location.create", "storage_location", loc.ID, map[string]any{"name": loc.Name, "warehouse_id": loc.WarehouseID})
	w.Header().Set("Location", "/v1/locations/"+loc.ID)
	writeData(w, http.StatusCreated, loc, nil)
}

func (a *API) handleGetLocation(w http.ResponseWriter, r *http.Request) {
	loc, err := a.dir.GetLocation(r.Context(), r.PathValue("id"))
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, loc, nil)
}

func (a *API) handleListLocations(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	locations, total, err := a.dir.ListLocations(r.Context(), r.PathValue("id"), page, limit)
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	if locations == nil {
		locations = []directory.StorageLocation{}
	}
	writeData(w, http.StatusOK, locations, listMeta{Page: page, Limit: limit, Total: total})
}

type locationUpdateRequest struct {
	Name *string `json:"name"`
	Code *string `json:"code"`
}

func (a *API) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	loc, err := a.dir.UpdateLocation(r.Context(), r.PathValue("id"), directory.LocationUpdate{
		Name: req.Name,
		Code: req.Code,
	})
	if err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	a.trail.Record(r.Context(), "location.update", "storage_location", loc.ID, nil)
	writeData(w, http.StatusOK, loc, nil)
}

func (a *API) handleDeleteLocation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.dir.DeleteLocation(r.Context(), id); err != nil {
		handleDirectoryError(w, r, err)
		return
	}
	a.trail.Record(r.Context(), "location.delete", "storage_location", id, nil)
	writeData(w, http.StatusOK, map[string]string{"message": "storage location deleted"}, nil)
}

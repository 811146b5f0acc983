package httpapi

import (
	"net/http"

	"github.com/JuanPaGargoo/pos-core-api/internal/auth"
)

type createRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (a *API) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	role, err := a.rbac.CreateRole(r.Context(), req.Name, req.Description)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	a.trail.Record(r.Context(), "role.create", "role", role.ID, map[string]any{"name": role.Name})
	w.Header().Set("Location", "/v1/roles/"+role.ID)
	writeData(w, http.StatusCreated, role, nil)
}

type roleResponse struct {
	auth.Role
	Permissions []auth.Permission `json:"permissions"`
}

func (a *API) handleGetRole(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	role, err := a.rbac.GetRole(r.Context(), id)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	perms, err := a.rbac.PermissionsForRole(r.Context(), id)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if perms == nil {
		perms = []auth.Permission{}
	}
	writeData(w, http.StatusOK, roleResponse{Role: role, Permissions: perms}, nil)
}

func (a *API) handleListRoles(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	roles, total, err := a.rbac.ListRoles(r.Context(), page, limit)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if roles == nil {
		roles = []auth.Role{}
	}
	writeData(w, http.StatusOK, roles, listMeta{Page: page, Limit: limit, Total: total})
}

type updateRoleRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (a *API) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	role, err := a.rbac.UpdateRole(r.Context(), r.PathValue("id"), auth.RoleUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	a.trail.Record(r.Context(), "role.update", "role", role.ID, nil)
	writeData(w, http.StatusOK, role, nil)
}

func (a *API) handleDeleteRole(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.rbac.DeleteRole(r.Context(), id); err != nil {
		handleAuthError(w, r, err)
		return
	}
	a.trail.Record(r.Context(), "role.delete", "role", id, nil)
	writeData(w, http.StatusOK, map[string]string{"message": "role deleted"}, nil)
}

type setRolePermissionsRequest struct {
	PermissionKeys []string `json:"permission_keys"`
}

func (a *API) handleSetRolePermissions(w http.ResponseWriter, r *http.Request) {
	var req setRolePermissionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	id := r.PathValue("id")
	if err := a.rbac.SetRolePermissions(r.Context(), id, req.PermissionKeys); err != nil {
		handleAuthError(w, r, err)
		return
	}
	perms, err := a.rbac.PermissionsForRole(r.Context(), id)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if perms == nil {
		perms = []auth.Permission{}
	}
	a.trail.Record(r.Context(), "role.set-permissions", "role", id, map[string]any{"permission_keys": req.PermissionKeys})
	writeData(w, http.StatusOK, perms, nil)
}

func (a *API) handleListPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := a.rbac.ListPermissions(r.Context())
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if perms == nil {
		perms = []auth.Permission{}
	}
	writeData(w, http.StatusOK, perms, nil)
}

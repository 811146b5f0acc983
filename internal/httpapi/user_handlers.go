package httpapi

import (
	"errors"
	"net/http"

	"github.com/JuanPaGargoo/pos-core-api/internal/auth"
)

// handleAuthError maps auth package sentinels onto HTTP status codes.
func handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

type createUserRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsActive *bool  `json:"is_active"`
}

func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	user, err := a.rbac.CreateUser(r.Context(), auth.CreateUserInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		IsActive: req.IsActive,
	})
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	a.trail.Record(r.Context(), "user.create", "user", user.ID, map[string]any{"name": user.Name})
	w.Header().Set("Location", "/v1/users/"+user.ID)
	writeData(w, http.StatusCreated, user, nil)
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.rbac.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, user, nil)
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	users, total, err := a.rbac.ListUsers(r.Context(), page, limit)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if users == nil {
		users = []auth.User{}
	}
	writeData(w, http.StatusOK, users, listMeta{Page: page, Limit: limit, Total: total})
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsActive *bool   `json:"is_active"`
}

func (a *API) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	user, err := a.rbac.UpdateUser(r.Context(), r.PathValue("id"), auth.UserUpdate{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		IsActive: req.IsActive,
	})
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	a.trail.Record(r.Context(), "user.update", "user", user.ID, nil)
	writeData(w, http.StatusOK, user, nil)
}

func (a *API) handleDeactivateUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.rbac.DeactivateUser(r.Context(), id); err != nil {
		handleAuthError(w, r, err)
		return
	}
	a.trail.Record(r.Context(), "user.deactivate", "user", id, nil)
	writeData(w, http.StatusOK, map[string]string{"message": "user deactivated"}, nil)
}

type setUserRolesRequest struct {
	RoleIDs []string `json:"role_ids"`
}

func (a *API) handleSetUserRoles(w http.ResponseWriter, r *http.Request) {
	var req setUserRolesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	id := r.PathValue("id")
	if err := a.rbac.SetUserRoles(r.Context(), id, req.RoleIDs); err != nil {
		handleAuthError(w, r, err)
		return
	}
	roles, err := a.rbac.RolesForUser(r.Context(), id)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if roles == nil {
		roles = []auth.Role{}
	}
	a.trail.Record(r.Context(), "user.set-roles", "user", id, map[string]any{"role_ids": req.RoleIDs})
	writeData(w, http.StatusOK, roles, nil)
}

type setUserBranchesRequest struct {
	BranchIDs []string `json:"branch_ids"`
}

func (a *API) handleSetUserBranches(w http.ResponseWriter, r *http.Request) {
	var req setUserBranchesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	id := r.PathValue("id")
	if err := a.rbac.SetUserBranches(r.Context(), id, req.BranchIDs); err != nil {
		handleAuthError(w, r, err)
		return
	}
	branches, err := a.rbac.BranchesForUser(r.Context(), id)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if branches == nil {
		branches = []auth.BranchAssignment{}
	}
	a.trail.Record(r.Context(), "user.set-branches", "user", id, map[string]any{"branch_ids": req.BranchIDs})
	writeData(w, http.StatusOK, branches, nil)
}

package httpapi

import (
	"errors"
	"net/http"

	"github.com/JuanPaGargoo/pos-core-api/internal/auth"
	"github.com/JuanPaGargoo/pos-core-api/internal/obs"
)

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type sessionResponse struct {
	Tokens auth.TokenPair `json:"tokens"`
	User   auth.User      `json:"user"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	pair, principal, err := a.sessions.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			obs.CountLogin("denied")
			writeError(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		obs.CountLogin("error")
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	obs.CountLogin("ok")
	a.trail.Record(auth.ContextWithPrincipal(r.Context(), principal), "auth.login", "user", principal.User.ID, nil)
	writeData(w, http.StatusOK, sessionResponse{Tokens: pair, User: principal.User}, nil)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	pair, principal, err := a.sessions.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, r, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}
	writeData(w, http.StatusOK, sessionResponse{Tokens: pair, User: principal.User}, nil)
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	a.sessions.Logout(req.RefreshToken)
	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		a.trail.Record(r.Context(), "auth.logout", "user", principal.User.ID, nil)
	}
	writeData(w, http.StatusOK, map[string]string{"message": "logged out"}, nil)
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	identity, err := a.sessions.Identity(r.Context(), principal.User.ID)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			writeError(w, r, http.StatusUnauthorized, "session no longer valid")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeData(w, http.StatusOK, identity, nil)
}

func (a *API) handleMePermissions(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	keys, err := a.sessions.Permissions(r.Context(), principal.User.ID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeData(w, http.StatusOK, map[string]any{"permissions": keys}, nil)
}

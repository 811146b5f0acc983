// Package httpapi exposes the back-office REST surface: authentication,
// user and role administration, the branch directory, and the audit trail.
package httpapi

import (
	"database/sql"
	"net/http"
	"runtime"

	"github.com/JuanPaGargoo/pos-core-api/internal/audit"
	"github.com/JuanPaGargoo/pos-core-api/internal/auth"
	"github.com/JuanPaGargoo/pos-core-api/internal/directory"
	"github.com/JuanPaGargoo/pos-core-api/internal/obs"
)

// ReadyProbe carries the dependencies /readyz checks. A nil DB means the
// service runs on in-memory stores and is always ready.
type ReadyProbe struct {
	DB *sql.DB
}

// Options configures an API.
type Options struct {
	Sessions   *auth.Service
	RBAC       *auth.RBACService
	Directory  *directory.Service
	Trail      *audit.Trail
	ReadyProbe ReadyProbe
	Version    string
	RatePerSec float64
	RateBurst  int
}

// API is the HTTP surface of the service.
type API struct {
	mux        *http.ServeMux
	sessions   *auth.Service
	rbac       *auth.RBACService
	dir        *directory.Service
	trail      *audit.Trail
	readyProbe ReadyProbe
	version    string
	ratePerSec float64
	rateBurst  int
}

// New builds the API and registers all routes.
func New(opts Options) *API {
	a := &API{
		mux:        http.NewServeMux(),
		sessions:   opts.Sessions,
		rbac:       opts.RBAC,
		dir:        opts.Directory,
		trail:      opts.Trail,
		readyProbe: opts.ReadyProbe,
		version:    opts.Version,
		ratePerSec: opts.RatePerSec,
		rateBurst:  opts.RateBurst,
	}
	if a.trail == nil {
		a.trail = audit.NewTrail(nil)
	}
	if a.ratePerSec <= 0 {
		a.ratePerSec = 50
	}
	if a.rateBurst <= 0 {
		a.rateBurst = 100
	}

	a.mux.HandleFunc("GET /healthz", a.handleHealthz)
	a.mux.HandleFunc("GET /readyz", a.handleReadyz)
	a.mux.HandleFunc("GET /v1/info", a.handleInfo)
	a.mux.Handle("GET /metrics", obs.Handler())

	a.mux.HandleFunc("POST /v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("POST /v1/auth/refresh", a.handleRefresh)
	a.mux.HandleFunc("POST /v1/auth/logout", a.handleLogout)
	a.mux.HandleFunc("GET /v1/me", a.handleMe)
	a.mux.HandleFunc("GET /v1/me/permissions", a.handleMePermissions)

	a.handle("GET /v1/users", a.handleListUsers)
	a.handle("POST /v1/users", a.handleCreateUser)
	a.handle("GET /v1/users/{id}", a.handleGetUser)
	a.handle("PATCH /v1/users/{id}", a.handleUpdateUser)
	a.handle("DELETE /v1/users/{id}", a.handleDeactivateUser)
	a.handle("PUT /v1/users/{id}/roles", a.handleSetUserRoles)
	a.handle("PUT /v1/users/{id}/branches", a.handleSetUserBranches)

	a.handle("GET /v1/roles", a.handleListRoles)
	a.handle("POST /v1/roles", a.handleCreateRole)
	a.handle("GET /v1/roles/{id}", a.handleGetRole)
	a.handle("PATCH /v1/roles/{id}", a.handleUpdateRole)
	a.handle("DELETE /v1/roles/{id}", a.handleDeleteRole)
	a.handle("PUT /v1/roles/{id}/permissions", a.handleSetRolePermissions)
	a.handle("GET /v1/permissions", a.handleListPermissions)

	a.handle("GET /v1/branches", a.handleListBranches)
	a.handle("POST /v1/branches", a.handleCreateBranch)
	a.handle("GET /v1/branches/{id}", a.handleGetBranch)
	a.handle("PATCH /v1/branches/{id}", a.handleUpdateBranch)
	a.handle("DELETE /v1/branches/{id}", a.handleDeleteBranch)
	a.handle("GET /v1/branches/{id}/warehouses", a.handleListWarehouses)
	a.handle("POST /v1/branches/{id}/warehouses", a.handleCreateWarehouse)
	a.handle("GET /v1/warehouses/{id}", a.handleGetWarehouse)
	a.handle("PATCH /v1/warehouses/{id}", a.handleUpdateWarehouse)
	a.handle("DELETE /v1/warehouses/{id}", a.handleDeleteWarehouse)
	a.handle("GET /v1/warehouses/{id}/locations", a.handleListLocations)
	a.handle("POST /v1/warehouses/{id}/locations", a.handleCreateLocation)
	a.handle("GET /v1/locations/{id}", a.handleGetLocation)
	a.handle("PATCH /v1/locations/{id}", a.handleUpdateLocation)
	a.handle("DELETE /v1/locations/{id}", a.handleDeleteLocation)

	a.handle("GET /v1/audit", a.handleListAudit)

	return a
}

// handle registers a gated route. The mux pattern doubles as the lookup key
// into the permission table, so the routing table and the access policy can
// never drift apart.
func (a *API) handle(pattern string, h http.HandlerFunc) {
	a.mux.HandleFunc(pattern, requirePermission(pattern, h))
}

// Handler returns the full middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(1 << 20)(h)
	h = RateLimit(a.ratePerSec, a.rateBurst)(h)
	h = SecurityHeaders(h)
	h = CORS(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if a.readyProbe.DB != nil {
		if err := a.readyProbe.DB.PingContext(r.Context()); err != nil {
			obs.SetReady(false)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "reason": "database unreachable"})
			return
		}
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (a *API) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{
		"name":    "pos-core-api",
		"version": a.version,
		"go":      runtime.Version(),
	}, nil)
}

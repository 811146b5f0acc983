package auth

const (
	PermissionUsersRead          = "users.read"
	PermissionUsersCreate        = "users.create"
	PermissionUsersUpdate        = "users.update"
	PermissionUsersDelete        = "users.delete"
	PermissionUsersAssignRoles   = "users.assign-roles"
	PermissionUsersAssignBranch  = "users.assign-branches"
	PermissionRolesRead          = "roles.read"
	PermissionRolesCreate        = "roles.create"
	PermissionRolesUpdate        = "roles.update"
	PermissionRolesDelete        = "roles.delete"
	PermissionRolesGrant         = "roles.grant"
	PermissionPermissionsRead    = "permissions.read"
	PermissionBranchesRead       = "branches.read"
	PermissionBranchesCreate     = "branches.create"
	PermissionBranchesUpdate     = "branches.update"
	PermissionBranchesDelete     = "branches.delete"
	PermissionWarehousesRead     = "warehouses.read"
	PermissionWarehousesCreate   = "warehouses.create"
	PermissionWarehousesUpdate   = "warehouses.update"
	PermissionWarehousesDelete   = "warehouses.delete"
	PermissionLocationsRead      = "locations.read"
	PermissionLocationsCreate    = "locations.create"
	PermissionLocationsUpdate    = "locations.update"
	PermissionLocationsDelete    = "locations.delete"
	PermissionAuditRead          = "audit.read"
)

// BuiltinPermissions is the reference catalog ensured at startup.
var BuiltinPermissions = []Permission{
	{Key: PermissionUsersRead, Description: "List and view users"},
	{Key: PermissionUsersCreate, Description: "Create users"},
	{Key: PermissionUsersUpdate, Description: "Update user profiles and status"},
	{Key: PermissionUsersDelete, Description: "Deactivate users"},
	{Key: PermissionUsersAssignRoles, Description: "Replace a user's role set"},
	{Key: PermissionUsersAssignBranch, Description: "Replace a user's branch assignments"},
	{Key: PermissionRolesRead, Description: "List and view roles"},
	{Key: PermissionRolesCreate, Description: "Create roles"},
	{Key: PermissionRolesUpdate, Description: "Update roles"},
	{Key: PermissionRolesDelete, Description: "Delete roles"},
	{Key: PermissionRolesGrant, Description: "Replace a role's permission grants"},
	{Key: PermissionPermissionsRead, Description: "List the permission catalog"},
	{Key: PermissionBranchesRead, Description: "List and view branches"},
	{Key: PermissionBranchesCreate, Description: "Create branches"},
	{Key: PermissionBranchesUpdate, Description: "Update branches"},
	{Key: PermissionBranchesDelete, Description: "Delete branches"},
	{Key: PermissionWarehousesRead, Description: "List and view warehouses"},
	{Key: PermissionWarehousesCreate, Description: "Create warehouses"},
	{Key: PermissionWarehousesUpdate, Description: "Update warehouses"},
	{Key: PermissionWarehousesDelete, Description: "Delete warehouses"},
	{Key: PermissionLocationsRead, Description: "List and view storage locations"},
	{Key: PermissionLocationsCreate, Description: "Create storage locations"},
	{Key: PermissionLocationsUpdate, Description: "Update storage locations"},
	{Key: PermissionLocationsDelete, Description: "Delete storage locations"},
	{Key: PermissionAuditRead, Description: "Read the audit trail"},
}

// RoutePermissions is the declarative map from gated HTTP operations to the
// permission key each one requires. The access guard consults this table
// before dispatching to a handler; operations absent from the table are
// open to any authenticated user.
var RoutePermissions = map[string]string{
	"GET /v1/users":               PermissionUsersRead,
	"POST /v1/users":              PermissionUsersCreate,
	"GET /v1/users/{id}":          PermissionUsersRead,
	"PATCH /v1/users/{id}":        PermissionUsersUpdate,
	"DELETE /v1/users/{id}":       PermissionUsersDelete,
	"PUT /v1/users/{id}/roles":    PermissionUsersAssignRoles,
	"PUT /v1/users/{id}/branches": PermissionUsersAssignBranch,

	"GET /v1/roles":                  PermissionRolesRead,
	"POST /v1/roles":                 PermissionRolesCreate,
	"GET /v1/roles/{id}":             PermissionRolesRead,
	"PATCH /v1/roles/{id}":           PermissionRolesUpdate,
	"DELETE /v1/roles/{id}":          PermissionRolesDelete,
	"PUT /v1/roles/{id}/permissions": PermissionRolesGrant,

	"GET /v1/permissions": PermissionPermissionsRead,

	"GET /v1/branches":                   PermissionBranchesRead,
	"POST /v1/branches":                  PermissionBranchesCreate,
	"GET /v1/branches/{id}":              PermissionBranchesRead,
	"PATCH /v1/branches/{id}":            PermissionBranchesUpdate,
	"DELETE /v1/branches/{id}":           PermissionBranchesDelete,
	"GET /v1/branches/{id}/warehouses":   PermissionWarehousesRead,
	"POST /v1/branches/{id}/warehouses":  PermissionWarehousesCreate,
	"GET /v1/warehouses/{id}":            PermissionWarehousesRead,
	"PATCH /v1/warehouses/{id}":          PermissionWarehousesUpdate,
	"DELETE /v1/warehouses/{id}":         PermissionWarehousesDelete,
	"GET /v1/warehouses/{id}/locations":  PermissionLocationsRead,
	"POST /v1/warehouses/{id}/locations": PermissionLocationsCreate,
	"GET /v1/locations/{id}":             PermissionLocationsRead,
	"PATCH /v1/locations/{id}":           PermissionLocationsUpdate,
	"DELETE /v1/locations/{id}":          PermissionLocationsDelete,

	"GET /v1/audit": PermissionAuditRead,
}

// RequiredPermission looks up the permission key for an HTTP operation.
// Route patterns use "{id}" placeholders, e.g. "PUT /v1/users/{id}/roles".
func RequiredPermission(method, routePattern string) (string, bool) {
	key, ok := RoutePermissions[method+" "+routePattern]
	return key, ok
}

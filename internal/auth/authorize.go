package auth

// Principal represents an authenticated user with resolved roles and the
// flattened set of permission keys they hold.
type Principal struct {
	User        User
	Roles       []Role
	Permissions map[string]struct{}
}

// NewPrincipal constructs a principal from resolved permission keys.
func NewPrincipal(user User, roles []Role, permissionKeys []string) Principal {
	set := make(map[string]struct{}, len(permissionKeys))
	for _, key := range permissionKeys {
		set[key] = struct{}{}
	}
	return Principal{User: user, Roles: roles, Permissions: set}
}

// HasPermission reports whether the principal holds the permission key.
func (p Principal) HasPermission(key string) bool {
	_, ok := p.Permissions[key]
	return ok
}

// Authorize gates an operation behind a permission key. An empty key means
// the operation is unrestricted. The returned PermissionError names the
// missing key; it never reveals why other checks might have failed.
func Authorize(p Principal, permission string) error {
	if permission == "" {
		return nil
	}
	if !p.HasPermission(permission) {
		return &PermissionError{Permission: permission}
	}
	return nil
}

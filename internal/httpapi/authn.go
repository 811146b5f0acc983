package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/JuanPaGargoo/pos-core-api/internal/auth"
	"github.com/JuanPaGargoo/pos-core-api/internal/obs"
)

// publicPaths can be reached without a bearer token.
var publicPaths = map[string]struct{}{
	"/healthz":         {},
	"/readyz":          {},
	"/metrics":         {},
	"/v1/info":         {},
	"/v1/auth/login":   {},
	"/v1/auth/refresh": {},
}

// withAuth validates the bearer token on every non-public request and
// attaches the resolved principal to the context.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := publicPaths[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}
		token, err := extractBearerToken(r)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, err.Error())
			return
		}
		principal, err := a.sessions.AuthenticateToken(r.Context(), token)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		ctx := auth.ContextWithPrincipal(r.Context(), principal)
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing Authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("Authorization header must use the Bearer scheme")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("empty bearer token")
	}
	return token, nil
}

// requirePermission gates a handler on the permission key registered for its
// route pattern. Routes absent from the table pass through for any
// authenticated principal.
func requirePermission(pattern string, next http.HandlerFunc) http.HandlerFunc {
	permission, gated := auth.RoutePermissions[pattern]
	if !gated {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			writeError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		if err := auth.Authorize(principal, permission); err != nil {
			var perr *auth.PermissionError
			if errors.As(err, &perr) {
				obs.CountPermissionDenied(perr.Permission)
				writeError(w, r, http.StatusForbidden, "missing permission: "+perr.Permission)
				return
			}
			writeError(w, r, http.StatusForbidden, "forbidden")
			return
		}
		next(w, r)
	}
}

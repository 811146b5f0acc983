package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/JuanPaGargoo/pos-core-api/internal/audit"
	"github.com/JuanPaGargoo/pos-core-api/internal/auth"
	"github.com/JuanPaGargoo/pos-core-api/internal/directory"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T

	rbac *auth.RBACService
	dir  *directory.Service
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	authStore := auth.NewMemoryStore()
	dirStore := directory.NewMemoryStore()
	authStore.BranchName = dirStore.BranchName

	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{
		Issuer:        "pos-core-test",
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("new token issuer: %v", err)
	}

	sessions := auth.NewService(authStore, auth.NewMemoryRegistry(), issuer)
	if err := sessions.EnsureBuiltins(t.Context()); err != nil {
		t.Fatalf("ensure builtins: %v", err)
	}
	rbac, err := auth.NewRBACService(authStore)
	if err != nil {
		t.Fatalf("new rbac service: %v", err)
	}
	dir, err := directory.NewService(dirStore)
	if err != nil {
		t.Fatalf("new directory service: %v", err)
	}

	api := New(Options{
		Sessions:   sessions,
		RBAC:       rbac,
		Directory:  dir,
		Trail:      audit.NewTrail(audit.NewMemoryStore()),
		Version:    "test",
		RatePerSec: 1000,
		RateBurst:  1000,
	})

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		t:       t,
		rbac:    rbac,
		dir:     dir,
	}
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) post(path string, body any, headers map[string]string) *http.Response {
	return c.do(http.MethodPost, path, body, headers)
}

func (c *apiClient) get(path string, params url.Values, headers map[string]string) *http.Response {
	c.t.Helper()
	if params != nil {
		path += "?" + params.Encode()
	}
	return c.do(http.MethodGet, path, nil, headers)
}

func (c *apiClient) put(path string, body any, headers map[string]string) *http.Response {
	return c.do(http.MethodPut, path, body, headers)
}

func (c *apiClient) patch(path string, body any, headers map[string]string) *http.Response {
	return c.do(http.MethodPatch, path, body, headers)
}

func (c *apiClient) delete(path string, headers map[string]string) *http.Response {
	return c.do(http.MethodDelete, path, nil, headers)
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// seedOperator creates a user holding the given permission keys through a
// dedicated role, then logs in and returns the token pair.
func (c *apiClient) seedOperator(username string, permissionKeys []string) auth.TokenPair {
	c.t.Helper()
	ctx := c.t.Context()

	user, err := c.rbac.CreateUser(ctx, auth.CreateUserInput{
		Name:     "Operator " + username,
		Username: username,
		Password: "s3cret-password",
	})
	if err != nil {
		c.t.Fatalf("create user: %v", err)
	}
	if len(permissionKeys) > 0 {
		role, err := c.rbac.CreateRole(ctx, username+"-role", "")
		if err != nil {
			c.t.Fatalf("create role: %v", err)
		}
		if err := c.rbac.SetRolePermissions(ctx, role.ID, permissionKeys); err != nil {
			c.t.Fatalf("grant permissions: %v", err)
		}
		if err := c.rbac.SetUserRoles(ctx, user.ID, []string{role.ID}); err != nil {
			c.t.Fatalf("assign role: %v", err)
		}
	}

	resp := c.post("/v1/auth/login", map[string]string{
		"identifier": username,
		"password":   "s3cret-password",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("login status: %d", resp.StatusCode)
	}
	body := decode[loginEnvelope](c.t, resp)
	if body.Data.Tokens.AccessToken == "" || body.Data.Tokens.RefreshToken == "" {
		c.t.Fatalf("login returned empty tokens")
	}
	return body.Data.Tokens
}

type loginEnvelope struct {
	Data sessionResponse `json:"data"`
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func allPermissionKeys() []string {
	keys := make([]string, 0, len(auth.BuiltinPermissions))
	for _, p := range auth.BuiltinPermissions {
		keys = append(keys, p.Key)
	}
	return keys
}

package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/auth-service/internal/api/http/handler"
	"github.com/dtroode/auth-service/internal/apierrors"
	"github.com/dtroode/auth-service/internal/credential"
	"github.com/dtroode/auth-service/internal/keys"
	"github.com/dtroode/auth-service/internal/metrics"
	"github.com/dtroode/auth-service/internal/model"
	"github.com/dtroode/auth-service/internal/repository"
	"github.com/dtroode/auth-service/internal/service"
	"github.com/dtroode/auth-service/internal/testutil"
	"github.com/dtroode/auth-service/internal/token"
)

type testAPI struct {
	server *httptest.Server
	stores *repository.Stores
	creds  *credential.Bcrypt
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()
	lg := testutil.MakeNoopLogger()

	stores, err := repository.Open(ctx, repository.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	provider, err := keys.NewProvider(ctx, testutil.RSAKey(t), "")
	require.NoError(t, err)

	jwt, err := token.NewJWT(token.Config{
		PrivateKey:    provider.PrivateKey(),
		KeyID:         provider.KeyID(),
		RefreshSecret: []byte("refresh-secret"),
	})
	require.NoError(t, err)

	m := metrics.New()
	creds := credential.NewBcrypt(bcrypt.MinCost)
	tokens := service.NewTokenService(jwt, stores.RefreshTokens, lg, service.WithRecorder(m))

	r := New(Services{
		Auth:    service.NewAuth(stores.Users, creds, tokens, lg),
		Users:   service.NewUser(stores.Users, creds, lg),
		Tenants: service.NewTenant(stores.Tenants, lg),
		Tokens:  tokens,
		Keys:    provider,
		Pinger:  stores.Pinger,
	}, handler.CookieConfig{Domain: "localhost"}, m, m.Handler(), lg)

	srv := httptest.NewServer(r.Register())
	t.Cleanup(srv.Close)

	return &testAPI{server: srv, stores: stores, creds: creds}
}

func (a *testAPI) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, a.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (a *testAPI) seedAdmin(t *testing.T, email, password string) {
	t.Helper()
	hash, err := a.creds.Hash(password)
	require.NoError(t, err)
	_, err = a.stores.Users.Create(context.Background(), model.User{
		FirstName:    "Root",
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	})
	require.NoError(t, err)
}

func tokenCookies(t *testing.T, resp *http.Response) (access, refresh *http.Cookie) {
	t.Helper()
	for _, c := range resp.Cookies() {
		switch c.Name {
		case "accessToken":
			access = c
		case "refreshToken":
			refresh = c
		}
	}
	require.NotNil(t, access, "access cookie")
	require.NotNil(t, refresh, "refresh cookie")
	return access, refresh
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestRouter_SessionLifecycle(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodPost, "/auth/register",
		`{"firstName":"Jane","lastName":"Doe","email":"jane@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	registered := decode[map[string]int64](t, resp)
	require.NotZero(t, registered["id"])
	access, refresh := tokenCookies(t, resp)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, refresh.SameSite)

	resp = api.do(t, http.MethodPost, "/auth/register", `{"email":"jane@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email is already exists!", decode[apierrors.Envelope](t, resp).Errors[0].Msg)

	resp = api.do(t, http.MethodGet, "/auth/self", "", access)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	self := decode[map[string]any](t, resp)
	assert.Equal(t, "jane@example.com", self["email"])
	assert.Equal(t, "customer", self["role"])
	assert.NotContains(t, self, "password")

	resp = api.do(t, http.MethodPost, "/auth/login", `{"email":"jane@example.com","password":"wrong-pass"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, resp.Cookies())

	resp = api.do(t, http.MethodPost, "/auth/login", `{"email":"jane@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, loginRefresh := tokenCookies(t, resp)

	resp = api.do(t, http.MethodPost, "/auth/refresh", "", loginRefresh)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, rotated := tokenCookies(t, resp)
	assert.NotEqual(t, loginRefresh.Value, rotated.Value)

	resp = api.do(t, http.MethodPost, "/auth/refresh", "", loginRefresh)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "rotated token must not be reusable")

	resp = api.do(t, http.MethodPost, "/auth/logout", "", rotated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, c := range resp.Cookies() {
		assert.Empty(t, c.Value)
	}

	resp = api.do(t, http.MethodPost, "/auth/refresh", "", rotated)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// the register session is untouched by logging out of another one
	resp = api.do(t, http.MethodPost, "/auth/refresh", "", refresh)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_Authentication(t *testing.T) {
	api := newTestAPI(t)

	tests := map[string]struct {
		cookie  *http.Cookie
		header  string
		wantMsg string
	}{
		"no token":         {wantMsg: "Authorization token is missing"},
		"undefined bearer": {header: "Bearer undefined", wantMsg: "Authorization token is missing"},
		"garbage cookie":   {cookie: &http.Cookie{Name: "accessToken", Value: "abc.def.ghi"}, wantMsg: "Invalid token"},
		"hs256 as access":  {header: "Bearer eyJhbGciOiJIUzI1NiJ9.e30.sig", wantMsg: "Invalid token"},
		"garbage bearer":   {header: "Bearer nonsense", wantMsg: "Invalid token"},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, api.server.URL+"/auth/self", nil)
			require.NoError(t, err)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			resp, err := api.server.Client().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			env := decode[apierrors.Envelope](t, resp)
			require.Len(t, env.Errors, 1)
			assert.Equal(t, tt.wantMsg, env.Errors[0].Msg)
		})
	}
}

func TestRouter_RoleGates(t *testing.T) {
	api := newTestAPI(t)
	api.seedAdmin(t, "admin@example.com", "adminpass")

	resp := api.do(t, http.MethodPost, "/auth/register", `{"email":"cust@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	customer, _ := tokenCookies(t, resp)

	resp = api.do(t, http.MethodPost, "/auth/login", `{"email":"admin@example.com","password":"adminpass"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	admin, _ := tokenCookies(t, resp)

	resp = api.do(t, http.MethodPost, "/tenants", `{"name":"Pizza Hub","address":"Main st 1"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = api.do(t, http.MethodPost, "/tenants", `{"name":"Pizza Hub","address":"Main st 1"}`, customer)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, apierrors.TypeForbidden, decode[apierrors.Envelope](t, resp).Errors[0].Type)

	resp = api.do(t, http.MethodPost, "/tenants", `{"name":"Pizza Hub","address":"Main st 1"}`, admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tenantID := decode[map[string]int64](t, resp)["id"]
	require.NotZero(t, tenantID)

	resp = api.do(t, http.MethodGet, "/tenants", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, "tenant list is public")
	assert.Len(t, decode[[]map[string]any](t, resp), 1)

	resp = api.do(t, http.MethodGet, "/users", "", customer)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	body := `{"firstName":"Mia","lastName":"Lee","email":"mia@example.com","password":"secret1","tenantId":` +
		jsonInt(tenantID) + `}`
	resp = api.do(t, http.MethodPost, "/users", body, admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	managerID := decode[map[string]int64](t, resp)["id"]

	resp = api.do(t, http.MethodGet, "/users/"+jsonInt(managerID), "", admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	manager := decode[map[string]any](t, resp)
	assert.Equal(t, "manager", manager["role"])
	assert.EqualValues(t, tenantID, manager["tenantId"])

	resp = api.do(t, http.MethodGet, "/users/abc", "", admin)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = api.do(t, http.MethodDelete, "/tenants/"+jsonInt(tenantID), "", admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/tenants/"+jsonInt(tenantID), "", admin)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Tenant does not exist.", decode[apierrors.Envelope](t, resp).Errors[0].Msg)
}

func TestRouter_PublicEndpoints(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodGet, "/.well-known/jwks.json", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	set := decode[struct {
		Keys []map[string]any `json:"keys"`
	}](t, resp)
	require.Len(t, set.Keys, 1)
	assert.Equal(t, "RSA", set.Keys[0]["kty"])
	assert.Equal(t, "RS256", set.Keys[0]["alg"])
	assert.Equal(t, "sig", set.Keys[0]["use"])

	resp = api.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

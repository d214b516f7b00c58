package authz

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"atec/tenancy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	a, err := NewAuthorizer("", ModeEnforce)
	require.NoError(t, err)

	dom := DomainFromTenantID("acme")
	cases := []struct {
		role, object, action string
		want                 bool
	}{
		{"viewer", ObjectInventory, ActionRead, true},
		{"viewer", ObjectInventory, ActionWrite, false},
		{"staff", ObjectContracts, ActionWrite, true},
		{"staff", ObjectConfig, ActionAdmin, false},
		{"admin", ObjectConfig, ActionAdmin, true},
		{"", ObjectReports, ActionRead, false},
	}
	for _, tc := range cases {
		allowed, enforced, err := a.Authorize(SubjectFromRoleSlug(tc.role), dom, tc.object, tc.action)
		require.NoError(t, err)
		assert.True(t, enforced)
		assert.Equal(t, tc.want, allowed, "%s %s %s", tc.role, tc.object, tc.action)
	}
}

func TestPolicyFileScopedToTenant(t *testing.T) {
	dir := t.TempDir()
	policyPath := filepath.Join(dir, "policy.csv")
	require.NoError(t, os.WriteFile(policyPath, []byte("p, role:auditor, tenant:acme, reports, read\n"), 0o644))

	a, err := NewAuthorizer(policyPath, ModeEnforce)
	require.NoError(t, err)

	ok, _, err := a.Authorize("role:auditor", "tenant:acme", ObjectReports, ActionRead)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = a.Authorize("role:auditor", "tenant:other", ObjectReports, ActionRead)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Shadow ")
	require.NoError(t, err)
	assert.Equal(t, ModeShadow, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeEnforce, m)

	_, err = ParseMode("open")
	assert.Error(t, err)
}

func TestRequire(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	serve := func(a *Authorizer, role string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
		req = req.WithContext(tenancy.WithPrincipal(req.Context(), tenancy.Principal{TenantID: "acme", User: "ana", Role: role}))
		rec := httptest.NewRecorder()
		a.Require(ObjectInventory, ActionWrite, next).ServeHTTP(rec, req)
		return rec.Code
	}

	enforce, err := NewAuthorizer("", ModeEnforce)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, serve(enforce, "viewer"))
	assert.Equal(t, http.StatusNoContent, serve(enforce, "staff"))

	shadow, err := NewAuthorizer("", ModeShadow)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, serve(shadow, "viewer"))

	rec := httptest.NewRecorder()
	enforce.Require(ObjectInventory, ActionRead, next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

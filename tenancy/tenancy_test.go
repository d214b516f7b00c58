package tenancy

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticResolver map[string]bool

func (s staticResolver) ResolveTenant(id string) (bool, error) {
	if id == "broken" {
		return false, errors.New("db down")
	}
	return s[id], nil
}

func TestMiddleware(t *testing.T) {
	resolver := staticResolver{"acme": true, "closed": false}

	var got Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = MustFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := Middleware(resolver, next)

	cases := []struct {
		name   string
		tenant string
		user   string
		role   string
		code   int
	}{
		{"missing tenant", "", "ana", "", http.StatusBadRequest},
		{"unknown tenant", "nope", "ana", "", http.StatusNotFound},
		{"inactive tenant", "closed", "ana", "", http.StatusNotFound},
		{"resolver failure", "broken", "ana", "", http.StatusInternalServerError},
		{"missing user", "acme", "", "", http.StatusUnauthorized},
		{"ok", " ACME ", "ana", "Staff", http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			req.Header.Set(HeaderTenant, tc.tenant)
			req.Header.Set(HeaderUser, tc.user)
			req.Header.Set(HeaderRole, tc.role)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
	assert.Equal(t, Principal{TenantID: "acme", User: "ana", Role: "staff"}, got)
}

func TestDefaultRole(t *testing.T) {
	var got Principal
	h := Middleware(staticResolver{"acme": true}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderTenant, "acme")
	req.Header.Set(HeaderUser, "bia")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "acme", got.TenantID)
	assert.Equal(t, DefaultRole, got.Role)
}

package tenancy

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"atec/database"
	"atec/httperr"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Identity headers are set by the authenticating proxy in front of the app.
const (
	HeaderTenant = "X-Tenant-ID"
	HeaderUser   = "X-User"
	HeaderRole   = "X-Role"
)

const DefaultRole = "viewer"

type Principal struct {
	TenantID string
	User     string
	Role     string
}

type principalCtxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(Principal)
	return p, ok
}

// MustFromContext is used by handlers mounted behind Middleware.
func MustFromContext(ctx context.Context) Principal {
	p, ok := FromContext(ctx)
	if !ok {
		panic("tenancy: no principal in context")
	}
	return p
}

type Resolver interface {
	ResolveTenant(tenantID string) (bool, error)
}

type dbResolver struct {
	db *sqlx.DB
}

func NewDBResolver(db *sqlx.DB) Resolver {
	return &dbResolver{db: db}
}

func (r *dbResolver) ResolveTenant(tenantID string) (bool, error) {
	t, err := database.GetTenant(r.db, tenantID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return t.Active, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Middleware resolves the tenant and principal of every request.
func Middleware(resolver Resolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := normalize(r.Header.Get(HeaderTenant))
		if tenantID == "" {
			httperr.BadRequest(w, "Cabeçalho "+HeaderTenant+" obrigatório.")
			return
		}
		ok, err := resolver.ResolveTenant(tenantID)
		if err != nil {
			zap.S().Errorf("tenant resolution failed for %s: %v", tenantID, err)
			httperr.WriteJSON(w, http.StatusInternalServerError, map[string]string{"message": "Erro interno do servidor."})
			return
		}
		if !ok {
			httperr.WriteJSON(w, http.StatusNotFound, map[string]string{"message": "Organização não encontrada."})
			return
		}

		user := strings.TrimSpace(r.Header.Get(HeaderUser))
		if user == "" {
			httperr.WriteJSON(w, http.StatusUnauthorized, map[string]string{"message": "Usuário não autenticado."})
			return
		}
		role := normalize(r.Header.Get(HeaderRole))
		if role == "" {
			role = DefaultRole
		}

		p := Principal{TenantID: tenantID, User: user, Role: role}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

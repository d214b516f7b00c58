package authz

import (
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"atec/tenancy"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"go.uber.org/zap"
)

type Mode string

const (
	ModeEnforce  Mode = "enforce"
	ModeShadow   Mode = "shadow"
	ModeDisabled Mode = "disabled"
)

const (
	ActionRead  = "read"
	ActionWrite = "write"
	ActionAdmin = "admin"
)

const (
	ObjectInventory = "inventory"
	ObjectContracts = "contracts"
	ObjectOrders    = "orders"
	ObjectReports   = "reports"
	ObjectConfig    = "config"
)

//go:embed model.conf
var modelText string

//go:embed policy.csv
var defaultPolicy string

func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeEnforce:
		return ModeEnforce, nil
	case ModeShadow:
		return ModeShadow, nil
	case ModeDisabled:
		return ModeDisabled, nil
	default:
		return "", fmt.Errorf("authz: invalid mode %q (expected enforce|shadow|disabled)", raw)
	}
}

type Authorizer struct {
	enforcer *casbin.Enforcer
	mode     Mode
}

// NewAuthorizer loads the embedded policy, or the CSV file at policyPath when set.
func NewAuthorizer(policyPath string, mode Mode) (*Authorizer, error) {
	m, err := casbinmodel.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("authz: invalid model: %w", err)
	}
	var enforcer *casbin.Enforcer
	if policyPath != "" {
		enforcer, err = casbin.NewEnforcer(m, fileadapter.NewAdapter(policyPath))
	} else {
		enforcer, err = casbin.NewEnforcer(m, stringadapter.NewAdapter(defaultPolicy))
	}
	if err != nil {
		return nil, fmt.Errorf("authz: failed to load policy: %w", err)
	}
	return &Authorizer{enforcer: enforcer, mode: mode}, nil
}

func SubjectFromRoleSlug(roleSlug string) string {
	roleSlug = strings.TrimSpace(strings.ToLower(roleSlug))
	if roleSlug == "" {
		roleSlug = "anonymous"
	}
	return "role:" + roleSlug
}

func DomainFromTenantID(tenantID string) string {
	return "tenant:" + strings.ToLower(strings.TrimSpace(tenantID))
}

// Authorize reports whether the request is allowed and whether the decision is enforced.
func (a *Authorizer) Authorize(subject, domain, object, action string) (allowed bool, enforced bool, err error) {
	switch a.mode {
	case ModeDisabled:
		return true, false, nil
	case ModeShadow:
		ok, err := a.enforcer.Enforce(subject, domain, object, action)
		if err != nil {
			return false, false, err
		}
		return ok, false, nil
	case ModeEnforce:
		ok, err := a.enforcer.Enforce(subject, domain, object, action)
		if err != nil {
			return false, true, err
		}
		return ok, true, nil
	default:
		return false, false, errors.New("authz: unknown mode")
	}
}

// Require wraps next with a check of object/action for the request principal.
func (a *Authorizer) Require(object, action string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := tenancy.FromContext(r.Context())
		if !ok {
			writeForbidden(w)
			return
		}
		sub := SubjectFromRoleSlug(p.Role)
		dom := DomainFromTenantID(p.TenantID)
		allowed, enforced, err := a.Authorize(sub, dom, object, action)
		if err != nil {
			zap.S().Errorf("authz: %v", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"Erro interno do servidor."}`))
			return
		}
		if !allowed {
			if enforced {
				writeForbidden(w)
				return
			}
			zap.L().Warn("authz shadow denial",
				zap.String("subject", sub),
				zap.String("domain", dom),
				zap.String("object", object),
				zap.String("action", action),
			)
		}
		next.ServeHTTP(w, r)
	})
}

func writeForbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(`{"message":"Você não tem permissão para esta operação."}`))
}

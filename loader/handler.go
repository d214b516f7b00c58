package loader

import (
	"fmt"
	"net/http"

	"atec/httperr"
	"atec/tenancy"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// SeedDefaultsHandler recreates any missing default transaction types of the current tenant.
func SeedDefaultsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())

		tx, err := db.Beginx()
		if err != nil {
			httperr.Write(w, fmt.Errorf("failed to start transaction: %w", err))
			return
		}
		defer tx.Rollback()

		created, err := SeedDefaults(tx, p.TenantID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if err := tx.Commit(); err != nil {
			httperr.Write(w, fmt.Errorf("failed to commit transaction: %w", err))
			return
		}

		zap.S().Infof("tenant %s: seeded %d default transaction types", p.TenantID, created)
		httperr.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"message": fmt.Sprintf("%d tipos de transação criados.", created),
			"created": created,
		})
	}
}

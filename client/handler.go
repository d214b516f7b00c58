package client

import (
	"encoding/json"
	"net/http"
	"time"

	"atec/config"
	"atec/database"
	"atec/httperr"
	"atec/mappers"
	"atec/model"
	"atec/params"
	"atec/tenancy"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// FiltersFromRequest reads q, systemId, technicianId, active, blocked and expiringBefore.
func FiltersFromRequest(r *http.Request) (model.ClientFilters, error) {
	f := model.ClientFilters{Query: r.URL.Query().Get("q")}
	var err error
	if f.SystemID, err = params.Int64(r, "systemId"); err != nil {
		return f, err
	}
	if f.TechnicianID, err = params.Int64(r, "technicianId"); err != nil {
		return f, err
	}
	if f.Active, err = params.Bool(r, "active"); err != nil {
		return f, err
	}
	if f.Blocked, err = params.Bool(r, "blocked"); err != nil {
		return f, err
	}
	before, err := params.Date(r, "expiringBefore")
	if err != nil {
		return f, err
	}
	f.ExpiringBefore = params.EndOfDay(before)
	return f, nil
}

func view(c *model.Client) mappers.ClientView {
	return mappers.ToClientView(*c, time.Now(), config.GetConfig().App.ExpiringSoonDays)
}

func ListClientsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		filters, err := FiltersFromRequest(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		page := params.Page(r)
		clients, total, err := database.ListClients(db, p.TenantID, filters, page)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		views := mappers.ToClientViews(clients, time.Now(), config.GetConfig().App.ExpiringSoonDays)
		httperr.WriteJSON(w, http.StatusOK, model.NewPageResult(views, page, total))
	}
}

func GetClientHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		id, err := params.ID(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		c, err := database.GetClient(db, p.TenantID, id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, view(c))
	}
}

func CreateClientHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		var payload Payload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			httperr.BadRequest(w, "Corpo da requisição inválido: "+err.Error())
			return
		}
		c, err := payload.ToModel(db, p.TenantID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if err := database.CreateClient(db, c); err != nil {
			httperr.Write(w, err)
			return
		}
		created, err := database.GetClient(db, p.TenantID, c.ID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		zap.S().Infof("contract %d created for %q by %s", created.ID, created.Name, p.User)
		httperr.WriteJSON(w, http.StatusCreated, view(created))
	}
}

func UpdateClientHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		id, err := params.ID(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		var payload Payload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			httperr.BadRequest(w, "Corpo da requisição inválido: "+err.Error())
			return
		}
		c, err := payload.ToModel(db, p.TenantID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		c.ID = id
		if err := database.UpdateClient(db, c); err != nil {
			httperr.Write(w, err)
			return
		}
		updated, err := database.GetClient(db, p.TenantID, id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, view(updated))
	}
}

// DeleteClientHandler refuses contracts with renewal history; those should be deactivated instead.
func DeleteClientHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		id, err := params.ID(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		if err := database.DeleteClient(db, p.TenantID, id); err != nil {
			if database.IsForeignKeyViolation(err) {
				httperr.Write(w, httperr.Conflict("Este contrato possui histórico de renovações e não pode ser excluído. Desative-o em vez de excluir."))
				return
			}
			httperr.Write(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ToggleBlockedHandler flips the blocked flag and returns the contract.
func ToggleBlockedHandler(db *sqlx.DB) http.HandlerFunc {
	return toggle(db, func(q database.DBTX, c *model.Client) error {
		return database.SetClientBlocked(q, c.TenantID, c.ID, !c.Blocked)
	})
}

// ToggleActiveHandler flips the active flag and returns the contract.
func ToggleActiveHandler(db *sqlx.DB) http.HandlerFunc {
	return toggle(db, func(q database.DBTX, c *model.Client) error {
		return database.SetClientActive(q, c.TenantID, c.ID, !c.Active)
	})
}

func toggle(db *sqlx.DB, flip func(database.DBTX, *model.Client) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		id, err := params.ID(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			httperr.Write(w, err)
			return
		}
		defer tx.Rollback()

		c, err := database.GetClient(tx, p.TenantID, id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if err := flip(tx, c); err != nil {
			httperr.Write(w, err)
			return
		}
		updated, err := database.GetClient(tx, p.TenantID, id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if err := tx.Commit(); err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, view(updated))
	}
}

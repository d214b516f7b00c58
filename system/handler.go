package system

import (
	"encoding/json"
	"net/http"
	"strings"

	"atec/database"
	"atec/httperr"
	"atec/model"
	"atec/params"
	"atec/tenancy"

	"github.com/jmoiron/sqlx"
)

type systemPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (p systemPayload) toModel(tenantID string) (*model.System, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, httperr.Invalid("name", "O nome do sistema é obrigatório.")
	}
	return &model.System{TenantID: tenantID, Name: name, Description: strings.TrimSpace(p.Description)}, nil
}

func ListSystemsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		page := params.Page(r)
		systems, total, err := database.ListSystems(db, p.TenantID, r.URL.Query().Get("q"), page)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, model.NewPageResult(systems, page, total))
	}
}

func GetSystemHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		id, err := params.ID(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		s, err := database.GetSystem(db, p.TenantID, id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, s)
	}
}

func CreateSystemHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		var payload systemPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			httperr.BadRequest(w, "Corpo da requisição inválido: "+err.Error())
			return
		}
		s, err := payload.toModel(p.TenantID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if err := database.CreateSystem(db, s); err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusCreated, s)
	}
}

func UpdateSystemHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		id, err := params.ID(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		var payload systemPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			httperr.BadRequest(w, "Corpo da requisição inválido: "+err.Error())
			return
		}
		s, err := payload.toModel(p.TenantID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		s.ID = id
		if err := database.UpdateSystem(db, s); err != nil {
			httperr.Write(w, err)
			return
		}
		updated, err := database.GetSystem(db, p.TenantID, id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, updated)
	}
}

// DeleteSystemHandler refuses to delete a system still used by contracts.
func DeleteSystemHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		id, err := params.ID(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		if err := database.DeleteSystem(db, p.TenantID, id); err != nil {
			if database.IsForeignKeyViolation(err) {
				httperr.Write(w, httperr.Conflict("Este sistema está vinculado a contratos e não pode ser excluído."))
				return
			}
			httperr.Write(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

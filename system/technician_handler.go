package system

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"

	"atec/database"
	"atec/httperr"
	"atec/model"
	"atec/params"
	"atec/tenancy"

	"github.com/jmoiron/sqlx"
)

type technicianPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (p technicianPayload) toModel(tenantID string) (*model.Technician, error) {
	v := httperr.NewValidationError()
	t := &model.Technician{
		TenantID: tenantID,
		Name:     strings.TrimSpace(p.Name),
		Email:    strings.TrimSpace(p.Email),
		Phone:    strings.TrimSpace(p.Phone),
	}
	if t.Name == "" {
		v.Add("name", "O nome do técnico é obrigatório.")
	}
	if t.Email != "" {
		if _, err := mail.ParseAddress(t.Email); err != nil {
			v.Add("email", "E-mail inválido.")
		}
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	return t, nil
}

func ListTechniciansHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		page := params.Page(r)
		techs, total, err := database.ListTechnicians(db, p.TenantID, r.URL.Query().Get("q"), page)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, model.NewPageResult(techs, page, total))
	}
}

func GetTechnicianHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		id, err := params.ID(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		t, err := database.GetTechnician(db, p.TenantID, id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, t)
	}
}

func CreateTechnicianHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		var payload technicianPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			httperr.BadRequest(w, "Corpo da requisição inválido: "+err.Error())
			return
		}
		t, err := payload.toModel(p.TenantID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if err := database.CreateTechnician(db, t); err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusCreated, t)
	}
}

func UpdateTechnicianHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		id, err := params.ID(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		var payload technicianPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			httperr.BadRequest(w, "Corpo da requisição inválido: "+err.Error())
			return
		}
		t, err := payload.toModel(p.TenantID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		t.ID = id
		if err := database.UpdateTechnician(db, t); err != nil {
			httperr.Write(w, err)
			return
		}
		updated, err := database.GetTechnician(db, p.TenantID, id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, updated)
	}
}

// DeleteTechnicianHandler removes the technician; contracts keep running without one.
func DeleteTechnicianHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		id, err := params.ID(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		if err := database.DeleteTechnician(db, p.TenantID, id); err != nil {
			httperr.Write(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

package inout

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

type typePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsEntry     bool   `json:"isEntry"`
}

func decodeType(r *http.Request, tenantID string) (*model.TransactionType, error) {
	var p typePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return nil, httperr.Invalid("", "Corpo da requisição inválido: "+err.Error())
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, httperr.Invalid("name", "O nome do tipo é obrigatório.")
	}
	return &model.TransactionType{TenantID: tenantID, Name: name, Description: strings.TrimSpace(p.Description), IsEntry: p.IsEntry}, nil
}

func ListTransactionTypesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		types, err := database.GetAllTransactionTypes(db, p.TenantID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if types == nil {
			types = []model.TransactionType{}
		}
		httperr.WriteJSON(w, http.StatusOK, types)
	}
}

func CreateTransactionTypeHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		tt, err := decodeType(r, p.TenantID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if err := database.CreateTransactionType(db, tt); err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusCreated, tt)
	}
}

func UpdateTransactionTypeHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		id, err := params.ID(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		tt, err := decodeType(r, p.TenantID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		tt.ID = id
		if err := database.UpdateTransactionType(db, tt); err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, tt)
	}
}

// DeleteTransactionTypeHandler refuses types already used by transactions.
func DeleteTransactionTypeHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		id, err := params.ID(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		if err := database.DeleteTransactionType(db, p.TenantID, id); err != nil {
			if database.IsForeignKeyViolation(err) {
				httperr.Write(w, httperr.Conflict("Este tipo já foi usado em transações e não pode ser excluído."))
				return
			}
			httperr.Write(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

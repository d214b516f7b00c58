package contract

import (
	"encoding/json"
	"net/http"

	"atec/database"
	"atec/httperr"
	"atec/model"
	"atec/params"
	"atec/tenancy"

	"github.com/jmoiron/sqlx"
)

// RenewContractsHandler applies a percentage adjustment and month extension to the selected contracts.
func RenewContractsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())

		var in RenewalInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			httperr.BadRequest(w, "Corpo da requisição inválido: "+err.Error())
			return
		}

		result, err := RenewContracts(db, p.TenantID, p.User, in, database.Now())
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, result)
	}
}

// ListRenewalsHandler lists renewal history, newest first, optionally for one client and period.
func ListRenewalsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())

		filters, err := FiltersFromRequest(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		page := params.Page(r)
		rows, total, err := database.ListRenewals(db, p.TenantID, filters, page)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, model.NewPageResult(rows, page, total))
	}
}

// ListClientRenewalsHandler lists the renewal history of one contract.
func ListClientRenewalsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		id, err := params.ID(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		if _, err := database.GetClient(db, p.TenantID, id); err != nil {
			httperr.Write(w, err)
			return
		}
		page := params.Page(r)
		rows, total, err := database.ListRenewals(db, p.TenantID, model.RenewalFilters{ClientID: id}, page)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, model.NewPageResult(rows, page, total))
	}
}

// FiltersFromRequest reads clientId, from and to.
func FiltersFromRequest(r *http.Request) (model.RenewalFilters, error) {
	var f model.RenewalFilters
	var err error
	if f.ClientID, err = params.Int64(r, "clientId"); err != nil {
		return f, err
	}
	if f.From, err = params.Date(r, "from"); err != nil {
		return f, err
	}
	to, err := params.Date(r, "to")
	if err != nil {
		return f, err
	}
	f.To = params.EndOfDay(to)
	return f, nil
}

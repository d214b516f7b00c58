package category

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"atec/database"
	"atec/httperr"
	"atec/model"
	"atec/params"
	"atec/tenancy"

	"github.com/jmoiron/sqlx"
)

type payload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func decode(r *http.Request, tenantID string) (*model.Category, error) {
	var p payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return nil, httperr.Invalid("", "Corpo da requisição inválido: "+err.Error())
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, httperr.Invalid("name", "O nome da categoria é obrigatório.")
	}
	return &model.Category{TenantID: tenantID, Name: name, Description: strings.TrimSpace(p.Description)}, nil
}

func ListCategoriesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		page := params.Page(r)
		categories, total, err := database.ListCategories(db, p.TenantID, r.URL.Query().Get("q"), page)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, model.NewPageResult(categories, page, total))
	}
}

func GetCategoryHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		id, err := params.ID(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		c, err := database.GetCategory(db, p.TenantID, id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, c)
	}
}

func CreateCategoryHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		c, err := decode(r, p.TenantID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if err := database.CreateCategory(db, c); err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusCreated, c)
	}
}

func UpdateCategoryHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		id, err := params.ID(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		c, err := decode(r, p.TenantID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		c.ID = id
		if err := database.UpdateCategory(db, c); err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, c)
	}
}

// DeleteCategoryHandler refuses categories that still have products.
func DeleteCategoryHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		id, err := params.ID(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		if _, err := database.GetCategory(db, p.TenantID, id); err != nil {
			httperr.Write(w, err)
			return
		}
		n, err := database.CountProductsInCategory(db, p.TenantID, id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if n > 0 {
			httperr.Write(w, httperr.Conflict(fmt.Sprintf("A categoria possui %d produto(s) vinculado(s) e não pode ser excluída.", n)))
			return
		}
		if err := database.DeleteCategory(db, p.TenantID, id); err != nil {
			httperr.Write(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

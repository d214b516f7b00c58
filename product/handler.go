package product

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"atec/database"
	"atec/httperr"
	"atec/mappers"
	"atec/model"
	"atec/params"
	"atec/tenancy"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type Payload struct {
	Name                string `json:"name"`
	Description         string `json:"description"`
	CategoryID          *int64 `json:"categoryId"`
	ResponsibleUser     string `json:"responsibleUser"`
	StockAlertThreshold *int   `json:"stockAlertThreshold"`
}

// ToModel validates the payload. The acting user is responsible when none is given.
func (p Payload) ToModel(q database.DBTX, principal tenancy.Principal) (*model.Product, error) {
	v := httperr.NewValidationError()
	prod := &model.Product{
		TenantID:            principal.TenantID,
		Name:                strings.TrimSpace(p.Name),
		Description:         strings.TrimSpace(p.Description),
		CategoryID:          p.CategoryID,
		ResponsibleUser:     strings.TrimSpace(p.ResponsibleUser),
		StockAlertThreshold: p.StockAlertThreshold,
		Active:              true,
	}
	if prod.ResponsibleUser == "" {
		prod.ResponsibleUser = principal.User
	}
	if prod.Name == "" {
		v.Add("name", "O nome do produto é obrigatório.")
	}
	if prod.StockAlertThreshold != nil && *prod.StockAlertThreshold < 0 {
		v.Add("stockAlertThreshold", "O limite de alerta não pode ser negativo.")
	}
	if prod.CategoryID != nil {
		if _, err := database.GetCategory(q, principal.TenantID, *prod.CategoryID); err != nil {
			if !errors.Is(err, database.ErrNotFound) {
				return nil, err
			}
			v.Add("categoryId", "Categoria não encontrada.")
		}
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	return prod, nil
}

// ListResponse is a product page plus the low-stock warnings of the whole tenant.
type ListResponse struct {
	model.PageResult[mappers.ProductView]
	Warnings []string `json:"warnings"`
}

func ListProductsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		categoryID, err := params.Int64(r, "categoryId")
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		filters := model.ProductFilters{Query: r.URL.Query().Get("q"), CategoryID: categoryID}
		page := params.Page(r)

		products, total, err := database.ListActiveProducts(db, p.TenantID, filters, page)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		low, err := database.ListLowStockProducts(db, p.TenantID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, ListResponse{
			PageResult: model.NewPageResult(mappers.ToProductViews(products), page, total),
			Warnings:   mappers.LowStockWarnings(low),
		})
	}
}

func GetProductHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		id, err := params.ID(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		prod, err := database.GetProduct(db, p.TenantID, id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, mappers.ProductView{Product: *prod, LowStock: mappers.IsLowStock(*prod)})
	}
}

func CreateProductHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		var payload Payload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			httperr.BadRequest(w, "Corpo da requisição inválido: "+err.Error())
			return
		}
		prod, err := payload.ToModel(db, p)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if err := database.CreateProduct(db, prod); err != nil {
			httperr.Write(w, err)
			return
		}
		created, err := database.GetProduct(db, p.TenantID, prod.ID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusCreated, mappers.ProductView{Product: *created})
	}
}

func UpdateProductHandler(db *sqlx.DB) http.HandlerFunc {
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
		existing, err := database.GetProduct(db, p.TenantID, id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		prod, err := payload.ToModel(db, p)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		prod.ID = id
		prod.Active = existing.Active
		if err := database.UpdateProduct(db, prod); err != nil {
			httperr.Write(w, err)
			return
		}
		updated, err := database.GetProduct(db, p.TenantID, id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, mappers.ProductView{Product: *updated, LowStock: mappers.IsLowStock(*updated)})
	}
}

// DeleteProductHandler refuses products with stock on hand, deactivates
// products that have movements and removes the rest.
func DeleteProductHandler(db *sqlx.DB) http.HandlerFunc {
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

		prod, err := database.GetProduct(tx, p.TenantID, id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if prod.StockTotal > 0 {
			httperr.Write(w, httperr.Conflict(fmt.Sprintf("O produto '%s' possui %d unidade(s) em estoque e não pode ser excluído.", prod.Name, prod.StockTotal)))
			return
		}
		movements, err := database.CountProductTransactions(tx, p.TenantID, id)
		if err != nil {
			httperr.Write(w, err)
			return
		}

		message := "Produto excluído."
		if movements > 0 {
			err = database.DeactivateProduct(tx, p.TenantID, id)
			message = "O produto possui movimentações e foi desativado."
		} else {
			err = database.DeleteProduct(tx, p.TenantID, id)
		}
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				httperr.Write(w, httperr.Conflict("O produto está em uso e não pode ser excluído."))
				return
			}
			httperr.Write(w, err)
			return
		}
		if err := tx.Commit(); err != nil {
			httperr.Write(w, err)
			return
		}
		zap.S().Infof("product %d removed by %s: %s", id, p.User, message)
		httperr.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"message":     message,
			"deactivated": movements > 0,
		})
	}
}

// ListLotsHandler returns available units per lot, oldest lot first.
func ListLotsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		id, err := params.ID(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		if _, err := database.GetProduct(db, p.TenantID, id); err != nil {
			httperr.Write(w, err)
			return
		}
		lots, err := database.LotBalances(db, p.TenantID, id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if lots == nil {
			lots = []model.LotBalance{}
		}
		httperr.WriteJSON(w, http.StatusOK, lots)
	}
}

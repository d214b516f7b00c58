package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"atec/database"
	"atec/httperr"
	"atec/mappers"
	"atec/model"
	"atec/params"
	"atec/tenancy"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Payload struct {
	Name        string          `json:"name"`
	Document    string          `json:"document"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	CategoryID  int64           `json:"categoryId"`
	OrderDate   string          `json:"orderDate"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	PaidAmount  decimal.Decimal `json:"paidAmount"`
	Status      string          `json:"status"`
	Notes       string          `json:"notes"`
}

func (p Payload) ToModel(q database.DBTX, tenantID string) (*model.OrderClient, error) {
	v := httperr.NewValidationError()
	o := &model.OrderClient{
		TenantID:    tenantID,
		Name:        strings.TrimSpace(p.Name),
		Document:    strings.TrimSpace(p.Document),
		Email:       strings.TrimSpace(p.Email),
		Phone:       strings.TrimSpace(p.Phone),
		CategoryID:  p.CategoryID,
		TotalAmount: p.TotalAmount,
		PaidAmount:  p.PaidAmount,
		Status:      strings.ToLower(strings.TrimSpace(p.Status)),
		Notes:       strings.TrimSpace(p.Notes),
	}
	if o.Status == "" {
		o.Status = model.OrderOpen
	}

	if o.Name == "" {
		v.Add("name", "O nome do cliente é obrigatório.")
	}
	if o.CategoryID <= 0 {
		v.Add("categoryId", "Selecione a categoria do pedido.")
	} else if _, err := database.GetOrderCategory(q, tenantID, o.CategoryID); err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		v.Add("categoryId", "Categoria não encontrada.")
	}
	date, err := params.ParseDate(p.OrderDate)
	switch {
	case err != nil:
		v.Add("orderDate", "Data do pedido inválida.")
	case date == nil:
		v.Add("orderDate", "A data do pedido é obrigatória.")
	default:
		o.OrderDate = *date
	}
	if o.TotalAmount.IsNegative() {
		v.Add("totalAmount", "O valor total não pode ser negativo.")
	}
	if o.PaidAmount.IsNegative() {
		v.Add("paidAmount", "O valor pago não pode ser negativo.")
	} else if o.PaidAmount.GreaterThan(o.TotalAmount) {
		v.Add("paidAmount", "O valor pago não pode ser maior que o valor total.")
	}
	switch o.Status {
	case model.OrderOpen, model.OrderPaid, model.OrderCancelled:
	default:
		v.Add("status", "Situação inválida (use open, paid ou cancelled).")
	}

	if err := v.OrNil(); err != nil {
		return nil, err
	}
	return o, nil
}

// FiltersFromRequest reads q, categoryId, status, from and to.
func FiltersFromRequest(r *http.Request) (model.OrderFilters, error) {
	f := model.OrderFilters{
		Query:  r.URL.Query().Get("q"),
		Status: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))),
	}
	var err error
	if f.CategoryID, err = params.Int64(r, "categoryId"); err != nil {
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

func ListOrdersHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		filters, err := FiltersFromRequest(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		page := params.Page(r)
		orders, total, err := database.ListOrderClients(db, p.TenantID, filters, page)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, model.NewPageResult(mappers.ToOrderClientViews(orders), page, total))
	}
}

func GetOrderHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		id, err := params.ID(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		o, err := database.GetOrderClient(db, p.TenantID, id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, mappers.ToOrderClientViews([]model.OrderClient{*o})[0])
	}
}

func CreateOrderHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		var payload Payload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			httperr.BadRequest(w, "Corpo da requisição inválido: "+err.Error())
			return
		}
		o, err := payload.ToModel(db, p.TenantID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if err := database.CreateOrderClient(db, o); err != nil {
			httperr.Write(w, err)
			return
		}
		created, err := database.GetOrderClient(db, p.TenantID, o.ID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusCreated, mappers.ToOrderClientViews([]model.OrderClient{*created})[0])
	}
}

func UpdateOrderHandler(db *sqlx.DB) http.HandlerFunc {
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
		o, err := payload.ToModel(db, p.TenantID)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		o.ID = id
		if err := database.UpdateOrderClient(db, o); err != nil {
			httperr.Write(w, err)
			return
		}
		updated, err := database.GetOrderClient(db, p.TenantID, id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, mappers.ToOrderClientViews([]model.OrderClient{*updated})[0])
	}
}

func DeleteOrderHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		id, err := params.ID(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		if err := database.DeleteOrderClient(db, p.TenantID, id); err != nil {
			httperr.Write(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SummaryHandler returns the financial summary of the orders placed in [from, to].
func SummaryHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		filters, err := FiltersFromRequest(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		orders, err := database.OrdersForPeriod(db, p.TenantID, filters)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		from, _ := params.Date(r, "from")
		to, _ := params.Date(r, "to")
		httperr.WriteJSON(w, http.StatusOK, Summarize(orders, from, to))
	}
}

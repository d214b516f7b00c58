package order

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"atec/mappers"
	"atec/model"
	"atec/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderValidation(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.CreateOrderCategory(t, db, "Serviços")

	rec := testutil.Serve("POST /api/orders", CreateOrderHandler(db),
		testutil.Request(t, http.MethodPost, "/api/orders", map[string]interface{}{
			"name": "", "categoryId": 999, "orderDate": "x", "totalAmount": "-1", "paidAmount": "-2", "status": "lost",
		}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	testutil.DecodeJSON(t, rec, &body)
	for _, f := range []string{"name", "categoryId", "orderDate", "totalAmount", "paidAmount", "status"} {
		assert.Contains(t, body.Fields, f)
	}

	rec = testutil.Serve("POST /api/orders", CreateOrderHandler(db),
		testutil.Request(t, http.MethodPost, "/api/orders", map[string]interface{}{
			"name": "Padaria", "categoryId": cat.ID, "orderDate": "2024-04-10", "totalAmount": "500", "paidAmount": "120.50",
		}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created mappers.OrderClientView
	testutil.DecodeJSON(t, rec, &created)
	assert.Equal(t, model.OrderOpen, created.Status)
	assert.Equal(t, "Serviços", created.CategoryName)
	assert.Equal(t, "379.5", created.Outstanding.String())
}

func TestListAndSummary(t *testing.T) {
	db := testutil.NewDB(t)
	hw := testutil.CreateOrderCategory(t, db, "Hardware")
	sv := testutil.CreateOrderCategory(t, db, "Serviços")
	testutil.CreateOrder(t, db, hw.ID, "A", "100", "100", model.OrderPaid, testutil.Date(2024, time.March, 1))
	testutil.CreateOrder(t, db, sv.ID, "B", "300", "50", model.OrderOpen, testutil.Date(2024, time.March, 31))
	testutil.CreateOrder(t, db, sv.ID, "C", "900", "0", model.OrderCancelled, testutil.Date(2024, time.March, 15))
	testutil.CreateOrder(t, db, sv.ID, "D", "700", "0", model.OrderOpen, testutil.Date(2024, time.April, 1))

	rec := testutil.Serve("GET /api/orders", ListOrdersHandler(db),
		testutil.Request(t, http.MethodGet, "/api/orders?status=open", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var page model.PageResult[mappers.OrderClientView]
	testutil.DecodeJSON(t, rec, &page)
	require.Equal(t, 2, page.Total)
	assert.Equal(t, "D", page.Items[0].Name)

	rec = testutil.Serve("GET /api/orders/summary", SummaryHandler(db),
		testutil.Request(t, http.MethodGet, "/api/orders/summary?from=2024-03-01&to=2024-03-31", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var summary model.OrderSummary
	testutil.DecodeJSON(t, rec, &summary)
	assert.Equal(t, 2, summary.Overall.Count)
	assert.Equal(t, 1, summary.Overall.CancelledCount)
	assert.Equal(t, "400", summary.Overall.Total.String())
	assert.Equal(t, "250", summary.Overall.Outstanding.String())
	require.Len(t, summary.ByCategory, 2)
	require.NotNil(t, summary.From)
	assert.Equal(t, "2024-03-01", summary.From.Format("2006-01-02"))
}

func TestDeleteOrderCategoryInUse(t *testing.T) {
	db := testutil.NewDB(t)
	used := testutil.CreateOrderCategory(t, db, "Serviços")
	free := testutil.CreateOrderCategory(t, db, "Outros")
	testutil.CreateOrder(t, db, used.ID, "A", "10", "0", model.OrderOpen, testutil.Date(2024, time.March, 1))

	rec := testutil.Serve("DELETE /api/order-categories/{id}", DeleteCategoryHandler(db),
		testutil.Request(t, http.MethodDelete, "/api/order-categories/"+strconv.FormatInt(used.ID, 10), nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = testutil.Serve("DELETE /api/order-categories/{id}", DeleteCategoryHandler(db),
		testutil.Request(t, http.MethodDelete, "/api/order-categories/"+strconv.FormatInt(free.ID, 10), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = testutil.Serve("GET /api/order-categories", ListCategoriesHandler(db),
		testutil.Request(t, http.MethodGet, "/api/order-categories", nil))
	var page model.PageResult[model.OrderCategory]
	testutil.DecodeJSON(t, rec, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Serviços", page.Items[0].Name)
}

func TestCreateOrderRejectsOverpayment(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.CreateOrderCategory(t, db, "Serviços")

	rec := testutil.Serve("POST /api/orders", CreateOrderHandler(db),
		testutil.Request(t, http.MethodPost, "/api/orders", map[string]interface{}{
			"name": "Padaria", "categoryId": cat.ID, "orderDate": "2024-04-10", "totalAmount": "100", "paidAmount": "150",
		}))
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	testutil.DecodeJSON(t, rec, &body)
	assert.Equal(t, "O valor pago não pode ser maior que o valor total.", body.Fields["paidAmount"])

	rec = testutil.Serve("POST /api/orders", CreateOrderHandler(db),
		testutil.Request(t, http.MethodPost, "/api/orders", map[string]interface{}{
			"name": "Padaria", "categoryId": cat.ID, "orderDate": "2024-04-10", "totalAmount": "100", "paidAmount": "100", "status": "paid",
		}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

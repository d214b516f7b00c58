package product

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"atec/database"
	"atec/loader"
	"atec/mappers"
	"atec/model"
	"atec/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func path(id int64) string { return "/api/products/" + strconv.FormatInt(id, 10) }

func TestListProductsWithWarnings(t *testing.T) {
	db := testutil.NewDB(t)
	cables := testutil.CreateCategory(t, db, "Cabos")
	low := testutil.CreateProduct(t, db, "Cabo CAT6", &cables.ID, testutil.Ptr(5))
	testutil.CreateProduct(t, db, "Cabo HDMI", &cables.ID, testutil.Ptr(5))
	ok := testutil.CreateProduct(t, db, "Switch", nil, testutil.Ptr(1))
	gone := testutil.CreateProduct(t, db, "Hub", nil, nil)
	require.NoError(t, database.DeactivateProduct(db, testutil.TenantID, gone.ID))
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testutil.AddStock(t, db, low.ID, "A", 3, at)
	testutil.AddStock(t, db, ok.ID, "A", 4, at)

	rec := testutil.Serve("GET /api/products", ListProductsHandler(db),
		testutil.Request(t, http.MethodGet, "/api/products", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp ListResponse
	testutil.DecodeJSON(t, rec, &resp)
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Items, 3)
	assert.Equal(t, "Switch", resp.Items[0].Name)
	assert.False(t, resp.Items[0].LowStock)
	assert.False(t, resp.Items[1].LowStock)
	assert.Equal(t, "Cabo CAT6", resp.Items[2].Name)
	assert.Equal(t, 3, resp.Items[2].StockTotal)
	assert.True(t, resp.Items[2].LowStock)
	assert.Equal(t, []string{"Atenção: O produto 'Cabo CAT6' está com estoque baixo (3 unidades), abaixo do nível de aviso de 5."}, resp.Warnings)

	rec = testutil.Serve("GET /api/products", ListProductsHandler(db),
		testutil.Request(t, http.MethodGet, "/api/products?categoryId="+strconv.FormatInt(cables.ID, 10)+"&q=hdmi", nil))
	testutil.DecodeJSON(t, rec, &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Cabo HDMI", resp.Items[0].Name)
	assert.Len(t, resp.Warnings, 1)
}

func TestCreateAndUpdateProduct(t *testing.T) {
	db := testutil.NewDB(t)

	rec := testutil.Serve("POST /api/products", CreateProductHandler(db),
		testutil.Request(t, http.MethodPost, "/api/products", map[string]interface{}{"name": "Roteador", "categoryId": 999}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testutil.Serve("POST /api/products", CreateProductHandler(db),
		testutil.Request(t, http.MethodPost, "/api/products", map[string]interface{}{"name": "Roteador", "stockAlertThreshold": 2}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created mappers.ProductView
	testutil.DecodeJSON(t, rec, &created)
	assert.Equal(t, testutil.User, created.ResponsibleUser)
	assert.True(t, created.Active)
	assert.Zero(t, created.StockTotal)

	rec = testutil.Serve("PUT /api/products/{id}", UpdateProductHandler(db),
		testutil.Request(t, http.MethodPut, path(created.ID), map[string]interface{}{"name": "Roteador Wi-Fi", "responsibleUser": "carla"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated mappers.ProductView
	testutil.DecodeJSON(t, rec, &updated)
	assert.Equal(t, "Roteador Wi-Fi", updated.Name)
	assert.Equal(t, "carla", updated.ResponsibleUser)
	assert.Nil(t, updated.StockAlertThreshold)
}

func TestDeleteProductRules(t *testing.T) {
	db := testutil.NewDB(t)
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	stocked := testutil.CreateProduct(t, db, "Com estoque", nil, nil)
	testutil.AddStock(t, db, stocked.ID, "A", 1, at)
	rec := testutil.Serve("DELETE /api/products/{id}", DeleteProductHandler(db),
		testutil.Request(t, http.MethodDelete, path(stocked.ID), nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	moved := testutil.CreateProduct(t, db, "Movimentado", nil, nil)
	testutil.AddStock(t, db, moved.ID, "A", 1, at)
	_, err := db.Exec(`UPDATE items SET available = 0 WHERE product_id = ?`, moved.ID)
	require.NoError(t, err)
	rec = testutil.Serve("DELETE /api/products/{id}", DeleteProductHandler(db),
		testutil.Request(t, http.MethodDelete, path(moved.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Deactivated bool `json:"deactivated"`
	}
	testutil.DecodeJSON(t, rec, &body)
	assert.True(t, body.Deactivated)
	got, err := database.GetProduct(db, testutil.TenantID, moved.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	fresh := testutil.CreateProduct(t, db, "Novo", nil, nil)
	rec = testutil.Serve("DELETE /api/products/{id}", DeleteProductHandler(db),
		testutil.Request(t, http.MethodDelete, path(fresh.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	testutil.DecodeJSON(t, rec, &body)
	assert.False(t, body.Deactivated)
	_, err = database.GetProduct(db, testutil.TenantID, fresh.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestListLots(t *testing.T) {
	db := testutil.NewDB(t)
	prod := testutil.CreateProduct(t, db, "Cabo", nil, nil)
	testutil.AddStock(t, db, prod.ID, "B", 2, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	testutil.AddStock(t, db, prod.ID, "A", 1, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	rec := testutil.Serve("GET /api/products/{id}/lots", ListLotsHandler(db),
		testutil.Request(t, http.MethodGet, path(prod.ID)+"/lots", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var lots []struct {
		Lot       string `json:"lot"`
		Available int    `json:"available"`
	}
	testutil.DecodeJSON(t, rec, &lots)
	require.Len(t, lots, 2)
	assert.Equal(t, "B", lots[0].Lot)
	assert.Equal(t, 2, lots[0].Available)

	rec = testutil.Serve("GET /api/products/{id}/lots", ListLotsHandler(db),
		testutil.Request(t, http.MethodGet, "/api/products/999/lots", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProductStillReferenced(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, loader.CreateTenant(db, "globex", "Globex"))
	prod := testutil.CreateProduct(t, db, "Compartilhado", nil, nil)
	entry, _ := testutil.TransactionTypes(t, db)
	require.NoError(t, database.InsertTransactionInTx(db, &model.Transaction{
		TenantID: "globex", TypeID: entry.ID, UserName: "bob", ProductID: prod.ID,
		OccurredAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Quantity: 1,
	}))

	rec := testutil.Serve("DELETE /api/products/{id}", DeleteProductHandler(db),
		testutil.Request(t, http.MethodDelete, path(prod.ID), nil))
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "O produto está em uso")

	_, err := database.GetProduct(db, testutil.TenantID, prod.ID)
	assert.NoError(t, err)
}

func TestListProductsWarnsAcrossPages(t *testing.T) {
	db := testutil.NewDB(t)
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	alpha := testutil.CreateProduct(t, db, "Alpha", nil, testutil.Ptr(5))
	beta := testutil.CreateProduct(t, db, "Beta", nil, testutil.Ptr(2))
	testutil.AddStock(t, db, alpha.ID, "A", 1, at)
	testutil.AddStock(t, db, beta.ID, "A", 2, at)

	rec := testutil.Serve("GET /api/products", ListProductsHandler(db),
		testutil.Request(t, http.MethodGet, "/api/products?page=1&pageSize=1", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp ListResponse
	testutil.DecodeJSON(t, rec, &resp)
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Beta", resp.Items[0].Name)
	assert.Equal(t, []string{
		"Atenção: O produto 'Beta' atingiu o nível de estoque para aviso (2 unidades).",
		"Atenção: O produto 'Alpha' está com estoque baixo (1 unidades), abaixo do nível de aviso de 5.",
	}, resp.Warnings)
}

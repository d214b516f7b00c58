package category

import (
	"net/http"
	"strconv"
	"testing"

	"atec/model"
	"atec/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryLifecycle(t *testing.T) {
	db := testutil.NewDB(t)

	rec := testutil.Serve("POST /api/categories", CreateCategoryHandler(db),
		testutil.Request(t, http.MethodPost, "/api/categories", map[string]string{"name": "Cabos"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var c model.Category
	testutil.DecodeJSON(t, rec, &c)
	path := "/api/categories/" + strconv.FormatInt(c.ID, 10)

	rec = testutil.Serve("POST /api/categories", CreateCategoryHandler(db),
		testutil.Request(t, http.MethodPost, "/api/categories", map[string]string{"name": "Cabos"}))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = testutil.Serve("PUT /api/categories/{id}", UpdateCategoryHandler(db),
		testutil.Request(t, http.MethodPut, path, map[string]string{"name": "Cabos de rede"}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = testutil.Serve("GET /api/categories", ListCategoriesHandler(db),
		testutil.Request(t, http.MethodGet, "/api/categories?q=rede", nil))
	var page model.PageResult[model.Category]
	testutil.DecodeJSON(t, rec, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Cabos de rede", page.Items[0].Name)

	testutil.CreateProduct(t, db, "Cabo CAT6", &c.ID, nil)
	rec = testutil.Serve("DELETE /api/categories/{id}", DeleteCategoryHandler(db),
		testutil.Request(t, http.MethodDelete, path, nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "1 produto")

	empty := testutil.CreateCategory(t, db, "Vazia")
	rec = testutil.Serve("DELETE /api/categories/{id}", DeleteCategoryHandler(db),
		testutil.Request(t, http.MethodDelete, "/api/categories/"+strconv.FormatInt(empty.ID, 10), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = testutil.Serve("DELETE /api/categories/{id}", DeleteCategoryHandler(db),
		testutil.Request(t, http.MethodDelete, "/api/categories/"+strconv.FormatInt(empty.ID, 10), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

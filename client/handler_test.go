package client

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"strconv"
	"testing"
	"time"

	"atec/database"
	"atec/mappers"
	"atec/model"
	"atec/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

type fieldErrors struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

func TestCreateClientValidation(t *testing.T) {
	db := testutil.NewDB(t)
	sys := testutil.CreateSystem(t, db, "ERP")

	cases := []struct {
		name    string
		payload map[string]interface{}
		field   string
	}{
		{"missing name", map[string]interface{}{"systemId": sys.ID, "monthlyFee": "10", "startDate": "2024-01-01"}, "name"},
		{"unknown system", map[string]interface{}{"name": "A", "systemId": 999, "monthlyFee": "10", "startDate": "2024-01-01"}, "systemId"},
		{"no fees", map[string]interface{}{"name": "A", "systemId": sys.ID, "startDate": "2024-01-01"}, "monthlyFee"},
		{"annual without annual fee", map[string]interface{}{"name": "A", "systemId": sys.ID, "billingCycle": "annual", "monthlyFee": "10", "startDate": "2024-01-01"}, "annualFee"},
		{"negative fee", map[string]interface{}{"name": "A", "systemId": sys.ID, "monthlyFee": "-1", "startDate": "2024-01-01"}, "monthlyFee"},
		{"bad cycle", map[string]interface{}{"name": "A", "systemId": sys.ID, "billingCycle": "weekly", "monthlyFee": "10", "startDate": "2024-01-01"}, "billingCycle"},
		{"missing start", map[string]interface{}{"name": "A", "systemId": sys.ID, "monthlyFee": "10"}, "startDate"},
		{"expiration before start", map[string]interface{}{"name": "A", "systemId": sys.ID, "monthlyFee": "10", "startDate": "2024-02-01", "expirationDate": "2024-01-01"}, "expirationDate"},
		{"unknown technician", map[string]interface{}{"name": "A", "systemId": sys.ID, "technicianId": 42, "monthlyFee": "10", "startDate": "2024-01-01"}, "technicianId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := testutil.Serve("POST /api/contracts", CreateClientHandler(db),
				testutil.Request(t, http.MethodPost, "/api/contracts", tc.payload))
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			var body fieldErrors
			testutil.DecodeJSON(t, rec, &body)
			assert.Contains(t, body.Fields, tc.field)
		})
	}
}

func TestCreateAndGetClient(t *testing.T) {
	db := testutil.NewDB(t)
	sys := testutil.CreateSystem(t, db, "ERP")
	tech := testutil.CreateTechnician(t, db, "Bruno")
	exp := time.Now().UTC().AddDate(0, 0, 10).Format("2006-01-02")

	rec := testutil.Serve("POST /api/contracts", CreateClientHandler(db),
		testutil.Request(t, http.MethodPost, "/api/contracts", map[string]interface{}{
			"name":           "Padaria",
			"document":       "123",
			"systemId":       sys.ID,
			"technicianId":   tech.ID,
			"monthlyFee":     "199.90",
			"startDate":      "2024-01-01",
			"expirationDate": exp,
		}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created mappers.ClientView
	testutil.DecodeJSON(t, rec, &created)
	assert.Equal(t, model.BillingMonthly, created.BillingCycle)
	assert.Equal(t, "ERP", created.SystemName)
	require.NotNil(t, created.TechnicianName)
	assert.Equal(t, "Bruno", *created.TechnicianName)
	assert.True(t, created.Active)
	assert.Equal(t, mappers.ContractExpiring, created.Status)

	rec = testutil.Serve("GET /api/contracts/{id}", GetClientHandler(db),
		testutil.Request(t, http.MethodGet, "/api/contracts/"+itoa(created.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got mappers.ClientView
	testutil.DecodeJSON(t, rec, &got)
	assert.True(t, got.MonthlyFee.Decimal.Equal(decimal.RequireFromString("199.90")))
}

func TestListClientsFilters(t *testing.T) {
	db := testutil.NewDB(t)
	erp := testutil.CreateSystem(t, db, "ERP")
	pdv := testutil.CreateSystem(t, db, "PDV")
	soon := testutil.Date(2024, time.March, 10)
	later := testutil.Date(2025, time.March, 10)
	testutil.CreateClient(t, db, erp.ID, "Padaria", "100", "", &soon)
	blocked := testutil.CreateClient(t, db, erp.ID, "Mercado", "100", "", &later)
	testutil.CreateClient(t, db, pdv.ID, "Farmácia", "", "1200", nil)
	require.NoError(t, database.SetClientBlocked(db, testutil.TenantID, blocked.ID, true))

	list := func(query string) model.PageResult[mappers.ClientView] {
		rec := testutil.Serve("GET /api/contracts", ListClientsHandler(db),
			testutil.Request(t, http.MethodGet, "/api/contracts"+query, nil))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var page model.PageResult[mappers.ClientView]
		testutil.DecodeJSON(t, rec, &page)
		return page
	}

	assert.Equal(t, 3, list("").Total)
	assert.Equal(t, 2, list("?systemId="+itoa(erp.ID)).Total)
	assert.Equal(t, 1, list("?blocked=true").Total)
	assert.Equal(t, 1, list("?q=FARM").Total)

	expiring := list("?expiringBefore=2024-03-10")
	require.Len(t, expiring.Items, 1)
	assert.Equal(t, "Padaria", expiring.Items[0].Name)
	assert.Equal(t, mappers.ContractExpired, expiring.Items[0].Status)

	rec := testutil.Serve("GET /api/contracts", ListClientsHandler(db),
		testutil.Request(t, http.MethodGet, "/api/contracts?active=maybe", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToggleFlags(t *testing.T) {
	db := testutil.NewDB(t)
	sys := testutil.CreateSystem(t, db, "ERP")
	c := testutil.CreateClient(t, db, sys.ID, "Padaria", "100", "", nil)

	rec := testutil.Serve("POST /api/contracts/{id}/toggle-blocked", ToggleBlockedHandler(db),
		testutil.Request(t, http.MethodPost, "/api/contracts/"+itoa(c.ID)+"/toggle-blocked", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var v mappers.ClientView
	testutil.DecodeJSON(t, rec, &v)
	assert.True(t, v.Blocked)

	rec = testutil.Serve("POST /api/contracts/{id}/toggle-active", ToggleActiveHandler(db),
		testutil.Request(t, http.MethodPost, "/api/contracts/"+itoa(c.ID)+"/toggle-active", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	testutil.DecodeJSON(t, rec, &v)
	assert.False(t, v.Active)

	rec = testutil.Serve("POST /api/contracts/{id}/toggle-active", ToggleActiveHandler(db),
		testutil.Request(t, http.MethodPost, "/api/contracts/999/toggle-active", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteClientWithHistory(t *testing.T) {
	db := testutil.NewDB(t)
	sys := testutil.CreateSystem(t, db, "ERP")
	renewed := testutil.CreateClient(t, db, sys.ID, "Padaria", "100", "", nil)
	fresh := testutil.CreateClient(t, db, sys.ID, "Mercado", "100", "", nil)
	require.NoError(t, database.InsertRenewalInTx(db, &model.RenewalHistory{
		TenantID:      testutil.TenantID,
		ClientID:      renewed.ID,
		OldMonthlyFee: renewed.MonthlyFee,
		NewMonthlyFee: renewed.MonthlyFee,
		NewExpiration: testutil.Date(2025, time.January, 1),
		Months:        12,
		RenewedBy:     testutil.User,
		RenewedAt:     database.Now(),
	}))

	rec := testutil.Serve("DELETE /api/contracts/{id}", DeleteClientHandler(db),
		testutil.Request(t, http.MethodDelete, "/api/contracts/"+itoa(renewed.ID), nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Desative")

	rec = testutil.Serve("DELETE /api/contracts/{id}", DeleteClientHandler(db),
		testutil.Request(t, http.MethodDelete, "/api/contracts/"+itoa(fresh.ID), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestImportClients(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateSystem(t, db, "ERP")

	body := "client_name,document,system,billing_cycle,monthly_fee,annual_fee,start_date,expiration_date\n" +
		"Padaria São João,123,erp,monthly,\"199,90\",,2024-01-01,2024-12-31\n" +
		"Mercado,456,Desconhecido,monthly,100,,2024-01-01,\n" +
		"Farmácia,789,ERP,annual,,abc,2024-01-01,\n" +
		"Oficina,000,ERP,annual,,1200,2024-01-01,\n"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "contratos.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := testutil.Request(t, http.MethodPost, "/api/contracts/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := testutil.Serve("POST /api/contracts/import", ImportClientsHandler(db), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result ImportResult
	testutil.DecodeJSON(t, rec, &result)
	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.Errors[0].Line)
	assert.Contains(t, result.Errors[0].Message, "sistema não encontrado")
	assert.Equal(t, 4, result.Errors[1].Line)

	clients, total, err := database.ListClients(db, testutil.TenantID, model.ClientFilters{}, model.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "Oficina", clients[0].Name)
	assert.True(t, clients[1].MonthlyFee.Decimal.Equal(decimal.RequireFromString("199.90")))
}

func TestParseFee(t *testing.T) {
	cases := map[string]string{
		"1234.56":  "1234.56",
		"1.234,56": "1234.56",
		"R$ 99,90": "99.90",
		"  15  ":   "15",
	}
	for raw, want := range cases {
		got, err := parseFee(raw)
		require.NoError(t, err, raw)
		assert.True(t, got.Valid)
		assert.True(t, got.Decimal.Equal(decimal.RequireFromString(want)), raw)
	}
	empty, err := parseFee("")
	require.NoError(t, err)
	assert.False(t, empty.Valid)
}

package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"atec/database"
	"atec/loader"
	"atec/model"
	"atec/tenancy"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	TenantID = "acme"
	User     = "ana"
)

// NewDB opens an in-memory SQLite database with the schema applied and the
// default tenant seeded. A single connection keeps the memory database alive.
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", "file::memory:?_foreign_keys=1")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, loader.InitDatabase(db))
	require.NoError(t, loader.CreateTenant(db, TenantID, "ACME Ltda"))
	return db
}

// Principal returns the default test principal with the given role.
func Principal(role string) tenancy.Principal {
	return tenancy.Principal{TenantID: TenantID, User: User, Role: role}
}

// Request builds a request carrying the staff principal; body is JSON-encoded unless it is an io.Reader.
func Request(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		r = b
	default:
		buf, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, target, r)
	return req.WithContext(tenancy.WithPrincipal(req.Context(), Principal("staff")))
}

// Serve routes req through a mux holding a single pattern so path values resolve.
func Serve(pattern string, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.Handle(pattern, h)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func CreateSystem(t *testing.T, q database.DBTX, name string) *model.System {
	t.Helper()
	s := &model.System{TenantID: TenantID, Name: name}
	require.NoError(t, database.CreateSystem(q, s))
	return s
}

func CreateTechnician(t *testing.T, q database.DBTX, name string) *model.Technician {
	t.Helper()
	tech := &model.Technician{TenantID: TenantID, Name: name}
	require.NoError(t, database.CreateTechnician(q, tech))
	return tech
}

// CreateClient stores a contract with the given fees; an empty fee string leaves it null.
func CreateClient(t *testing.T, q database.DBTX, systemID int64, name, monthly, annual string, expiration *time.Time) *model.Client {
	t.Helper()
	c := &model.Client{
		TenantID:       TenantID,
		Name:           name,
		SystemID:       systemID,
		BillingCycle:   model.BillingMonthly,
		StartDate:      Date(2024, time.January, 1),
		ExpirationDate: expiration,
		Active:         true,
	}
	if monthly != "" {
		c.MonthlyFee = decimal.NewNullDecimal(decimal.RequireFromString(monthly))
	}
	if annual != "" {
		c.AnnualFee = decimal.NewNullDecimal(decimal.RequireFromString(annual))
		if monthly == "" {
			c.BillingCycle = model.BillingAnnual
		}
	}
	require.NoError(t, database.CreateClient(q, c))
	return c
}

func CreateCategory(t *testing.T, q database.DBTX, name string) *model.Category {
	t.Helper()
	c := &model.Category{TenantID: TenantID, Name: name}
	require.NoError(t, database.CreateCategory(q, c))
	return c
}

func CreateProduct(t *testing.T, q database.DBTX, name string, categoryID *int64, threshold *int) *model.Product {
	t.Helper()
	p := &model.Product{
		TenantID:            TenantID,
		Name:                name,
		CategoryID:          categoryID,
		ResponsibleUser:     User,
		Active:              true,
		StockAlertThreshold: threshold,
	}
	require.NoError(t, database.CreateProduct(q, p))
	return p
}

// TransactionTypes returns the seeded entry and exit types.
func TransactionTypes(t *testing.T, q database.DBTX) (entry, exit model.TransactionType) {
	t.Helper()
	types, err := database.GetAllTransactionTypes(q, TenantID)
	require.NoError(t, err)
	for _, tt := range types {
		if tt.IsEntry {
			entry = tt
		} else {
			exit = tt
		}
	}
	require.NotZero(t, entry.ID)
	require.NotZero(t, exit.ID)
	return entry, exit
}

func CreateOrderCategory(t *testing.T, q database.DBTX, name string) *model.OrderCategory {
	t.Helper()
	c := &model.OrderCategory{TenantID: TenantID, Name: name}
	require.NoError(t, database.CreateOrderCategory(q, c))
	return c
}

func CreateOrder(t *testing.T, q database.DBTX, categoryID int64, name, total, paid, status string, date time.Time) *model.OrderClient {
	t.Helper()
	o := &model.OrderClient{
		TenantID:    TenantID,
		Name:        name,
		CategoryID:  categoryID,
		OrderDate:   date,
		TotalAmount: decimal.RequireFromString(total),
		PaidAmount:  decimal.RequireFromString(paid),
		Status:      status,
	}
	require.NoError(t, database.CreateOrderClient(q, o))
	return o
}

func Ptr[T any](v T) *T { return &v }

// AddStock records an entry of quantity units of one lot for the product.
func AddStock(t *testing.T, q database.DBTX, productID int64, lot string, quantity int, at time.Time) *model.Transaction {
	t.Helper()
	entry, _ := TransactionTypes(t, q)
	tx := &model.Transaction{
		TenantID:   TenantID,
		TypeID:     entry.ID,
		UserName:   User,
		ProductID:  productID,
		OccurredAt: at,
		Quantity:   quantity,
	}
	require.NoError(t, database.InsertTransactionInTx(q, tx))
	require.NoError(t, database.InsertItemsInTx(q, TenantID, productID, tx.ID, &lot, quantity, at))
	return tx
}

package contract

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"atec/database"
	"atec/httperr"
	"atec/model"
	"atec/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(t time.Time) string { return t.Format("2006-01-02") }

func TestAdjustFee(t *testing.T) {
	assert.False(t, AdjustFee(decimal.NullDecimal{}, dec("10")).Valid)

	got := AdjustFee(decimal.NewNullDecimal(dec("199.90")), dec("7.5"))
	require.True(t, got.Valid)
	assert.True(t, got.Decimal.Equal(dec("214.89")), got.Decimal.String())

	got = AdjustFee(decimal.NewNullDecimal(dec("100")), dec("-20"))
	assert.True(t, got.Decimal.Equal(dec("80")), got.Decimal.String())
}

func TestApplyRenewalMonthlyOnly(t *testing.T) {
	exp := testutil.Date(2024, time.January, 31)
	c := &model.Client{ID: 7, TenantID: "acme", Name: "Padaria", MonthlyFee: decimal.NewNullDecimal(dec("150.00")), ExpirationDate: &exp}
	now := time.Date(2024, time.January, 20, 9, 0, 0, 0, time.UTC)

	h := ApplyRenewal(c, dec("10"), 1, "ana", now)

	assert.True(t, c.MonthlyFee.Decimal.Equal(dec("165")))
	assert.False(t, c.AnnualFee.Valid)
	assert.Equal(t, "2024-02-29", day(*c.ExpirationDate))

	assert.Equal(t, int64(7), h.ClientID)
	assert.True(t, h.OldMonthlyFee.Decimal.Equal(dec("150")))
	assert.True(t, h.NewMonthlyFee.Decimal.Equal(dec("165")))
	assert.False(t, h.OldAnnualFee.Valid)
	assert.False(t, h.NewAnnualFee.Valid)
	require.NotNil(t, h.OldExpiration)
	assert.Equal(t, "2024-01-31", day(*h.OldExpiration))
	assert.Equal(t, "2024-02-29", day(h.NewExpiration))
	assert.Equal(t, "ana", h.RenewedBy)
	assert.Equal(t, now, h.RenewedAt)
}

func TestApplyRenewalBothFeesWithoutExpiration(t *testing.T) {
	c := &model.Client{
		MonthlyFee: decimal.NewNullDecimal(dec("100")),
		AnnualFee:  decimal.NewNullDecimal(dec("1000")),
	}
	now := time.Date(2024, time.August, 31, 18, 30, 0, 0, time.UTC)

	h := ApplyRenewal(c, dec("5"), 6, "bia", now)

	assert.True(t, c.MonthlyFee.Decimal.Equal(dec("105")))
	assert.True(t, c.AnnualFee.Decimal.Equal(dec("1050")))
	assert.Nil(t, h.OldExpiration)
	assert.Equal(t, "2025-02-28", day(h.NewExpiration))
}

func TestRenewalInputValidate(t *testing.T) {
	cases := []struct {
		name  string
		in    RenewalInput
		field string
	}{
		{"no ids", RenewalInput{Percentage: dec("5"), Months: 12}, "clientIds"},
		{"bad id", RenewalInput{ClientIDs: []int64{0}, Months: 12}, "clientIds"},
		{"percentage too low", RenewalInput{ClientIDs: []int64{1}, Percentage: dec("-100"), Months: 1}, "percentage"},
		{"negative months", RenewalInput{ClientIDs: []int64{1}, Months: -1}, "months"},
		{"nothing to do", RenewalInput{ClientIDs: []int64{1}}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			var v *httperr.ValidationError
			require.ErrorAs(t, err, &v)
			assert.Contains(t, v.Fields, tc.field)
		})
	}
	assert.NoError(t, RenewalInput{ClientIDs: []int64{1}, Percentage: dec("-10")}.Validate())
}

func TestRenewContracts(t *testing.T) {
	db := testutil.NewDB(t)
	sys := testutil.CreateSystem(t, db, "ERP")
	a := testutil.CreateClient(t, db, sys.ID, "Alfa", "100.00", "", testutil.Ptr(testutil.Date(2024, time.January, 31)))
	b := testutil.CreateClient(t, db, sys.ID, "Beta", "", "1200.00", nil)

	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	in := RenewalInput{ClientIDs: []int64{a.ID, 999, b.ID, a.ID}, Percentage: dec("10"), Months: 1}

	res, err := RenewContracts(db, testutil.TenantID, "ana", in, now)
	require.NoError(t, err)
	assert.Len(t, res.Renewed, 2)
	assert.Equal(t, []int64{999}, res.Missing)
	assert.Empty(t, res.Failed)
	assert.Equal(t, "Contratos não encontrados: 999", res.Warning)

	gotA, err := database.GetClient(db, testutil.TenantID, a.ID)
	require.NoError(t, err)
	assert.True(t, gotA.MonthlyFee.Decimal.Equal(dec("110")), gotA.MonthlyFee.Decimal.String())
	assert.False(t, gotA.AnnualFee.Valid)
	assert.Equal(t, "2024-02-29", day(*gotA.ExpirationDate))

	gotB, err := database.GetClient(db, testutil.TenantID, b.ID)
	require.NoError(t, err)
	assert.True(t, gotB.AnnualFee.Decimal.Equal(dec("1320")))
	assert.Equal(t, "2024-04-15", day(*gotB.ExpirationDate))

	// A second run is a new renewal event and compounds.
	res, err = RenewContracts(db, testutil.TenantID, "bia", RenewalInput{ClientIDs: []int64{a.ID}, Percentage: dec("10"), Months: 1}, now)
	require.NoError(t, err)
	require.Len(t, res.Renewed, 1)
	assert.Empty(t, res.Warning)

	gotA, err = database.GetClient(db, testutil.TenantID, a.ID)
	require.NoError(t, err)
	assert.True(t, gotA.MonthlyFee.Decimal.Equal(dec("121")))
	assert.Equal(t, "2024-03-29", day(*gotA.ExpirationDate))

	history, total, err := database.ListRenewals(db, testutil.TenantID, model.RenewalFilters{ClientID: a.ID}, model.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, history, 2)
	assert.Equal(t, "bia", history[0].RenewedBy)
	assert.True(t, history[0].OldMonthlyFee.Decimal.Equal(dec("110")))
	assert.True(t, history[0].NewMonthlyFee.Decimal.Equal(dec("121")))
	assert.True(t, history[0].Percentage.Equal(dec("10")))
	assert.Equal(t, "Alfa", history[0].ClientName)
}

func TestRenewContractsIgnoresOtherTenants(t *testing.T) {
	db := testutil.NewDB(t)
	sys := testutil.CreateSystem(t, db, "ERP")
	c := testutil.CreateClient(t, db, sys.ID, "Alfa", "100", "", nil)

	res, err := RenewContracts(db, "other", "ana", RenewalInput{ClientIDs: []int64{c.ID}, Percentage: dec("10")}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, res.Renewed)
	assert.Equal(t, []int64{c.ID}, res.Missing)
}

func TestRenewContractsHandler(t *testing.T) {
	db := testutil.NewDB(t)
	sys := testutil.CreateSystem(t, db, "ERP")
	c := testutil.CreateClient(t, db, sys.ID, "Alfa", "200", "", nil)

	body := map[string]interface{}{"clientIds": []int64{c.ID, 404}, "percentage": "2.5", "months": 12}
	rec := testutil.Serve("POST /api/contracts/renewals", RenewContractsHandler(db),
		testutil.Request(t, http.MethodPost, "/api/contracts/renewals", body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res RenewalResult
	testutil.DecodeJSON(t, rec, &res)
	require.Len(t, res.Renewed, 1)
	assert.True(t, res.Renewed[0].NewMonthlyFee.Decimal.Equal(dec("205")))
	assert.Equal(t, testutil.User, res.Renewed[0].RenewedBy)
	assert.Equal(t, []int64{404}, res.Missing)

	rec = testutil.Serve("POST /api/contracts/renewals", RenewContractsHandler(db),
		testutil.Request(t, http.MethodPost, "/api/contracts/renewals", map[string]interface{}{"clientIds": []int64{}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testutil.Serve("GET /api/contracts/{id}/renewals", ListClientRenewalsHandler(db),
		testutil.Request(t, http.MethodGet, "/api/contracts/"+itoa(c.ID)+"/renewals", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var page model.PageResult[model.RenewalHistory]
	testutil.DecodeJSON(t, rec, &page)
	assert.Equal(t, 1, page.Total)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

package mappers

import (
	"testing"
	"time"

	"atec/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToClientViewStatus(t *testing.T) {
	now := time.Date(2024, time.June, 10, 15, 0, 0, 0, time.UTC)
	at := func(y int, m time.Month, d int) *time.Time {
		v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &v
	}
	cases := []struct {
		name string
		exp  *time.Time
		want string
		days int
	}{
		{"expired", at(2024, time.June, 9), ContractExpired, -1},
		{"expires today", at(2024, time.June, 10), ContractExpiring, 0},
		{"inside window", at(2024, time.July, 10), ContractExpiring, 30},
		{"outside window", at(2024, time.July, 11), ContractCurrent, 31},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := ToClientView(model.Client{ExpirationDate: tc.exp}, now, 30)
			assert.Equal(t, tc.want, v.Status)
			require.NotNil(t, v.DaysToExpire)
			assert.Equal(t, tc.days, *v.DaysToExpire)
		})
	}

	v := ToClientView(model.Client{}, now, 30)
	assert.Equal(t, ContractOpenEnd, v.Status)
	assert.Nil(t, v.DaysToExpire)
}

func TestToProductViews(t *testing.T) {
	five := 5
	products := []model.Product{
		{Name: "Cabo", StockTotal: 3, StockAlertThreshold: &five},
		{Name: "Switch", StockTotal: 0, StockAlertThreshold: &five},
		{Name: "Roteador", StockTotal: 6, StockAlertThreshold: &five},
		{Name: "Conector", StockTotal: 1},
		{Name: "Patch", StockTotal: 5, StockAlertThreshold: &five},
	}
	views := ToProductViews(products)
	require.Len(t, views, 5)
	assert.True(t, views[0].LowStock)
	assert.False(t, views[1].LowStock)
	assert.False(t, views[2].LowStock)
	assert.False(t, views[3].LowStock)
	assert.True(t, views[4].LowStock)

	assert.Equal(t, []string{
		"Atenção: O produto 'Cabo' está com estoque baixo (3 unidades), abaixo do nível de aviso de 5.",
		"Atenção: O produto 'Patch' atingiu o nível de estoque para aviso (5 unidades).",
	}, LowStockWarnings(products))
	assert.Empty(t, LowStockWarning(products[1]))
}

func TestOrderOutstanding(t *testing.T) {
	o := model.OrderClient{TotalAmount: decimal.RequireFromString("500"), PaidAmount: decimal.RequireFromString("120.50"), Status: model.OrderOpen}
	views := ToOrderClientViews([]model.OrderClient{o})
	assert.True(t, views[0].Outstanding.Equal(decimal.RequireFromString("379.50")))

	o.Status = model.OrderCancelled
	assert.True(t, o.Outstanding().IsZero())
}

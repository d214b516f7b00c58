package mappers

import (
	"fmt"
	"time"

	"atec/model"

	"github.com/shopspring/decimal"
)

const (
	ContractExpired  = "expired"
	ContractExpiring = "expiring"
	ContractCurrent  = "current"
	ContractOpenEnd  = "open"
)

// ClientView adds the contract status shown on the contract screens.
type ClientView struct {
	model.Client
	Status       string `json:"status"`
	DaysToExpire *int   `json:"daysToExpire"`
}

func ToClientView(c model.Client, now time.Time, expiringSoonDays int) ClientView {
	v := ClientView{Client: c, Status: ContractOpenEnd}
	if c.ExpirationDate == nil {
		return v
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	exp := c.ExpirationDate.UTC()
	exp = time.Date(exp.Year(), exp.Month(), exp.Day(), 0, 0, 0, 0, time.UTC)
	days := int(exp.Sub(today).Hours() / 24)
	v.DaysToExpire = &days
	switch {
	case days < 0:
		v.Status = ContractExpired
	case days <= expiringSoonDays:
		v.Status = ContractExpiring
	default:
		v.Status = ContractCurrent
	}
	return v
}

func ToClientViews(clients []model.Client, now time.Time, expiringSoonDays int) []ClientView {
	views := make([]ClientView, 0, len(clients))
	for _, c := range clients {
		views = append(views, ToClientView(c, now, expiringSoonDays))
	}
	return views
}

// ProductView flags products whose stock reached the alert threshold.
type ProductView struct {
	model.Product
	LowStock bool `json:"lowStock"`
}

// IsLowStock reports 0 < stock <= threshold. Empty stock is not an alert.
func IsLowStock(p model.Product) bool {
	if p.StockAlertThreshold == nil {
		return false
	}
	return p.StockTotal > 0 && p.StockTotal <= *p.StockAlertThreshold
}

func ToProductViews(products []model.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, ProductView{Product: p, LowStock: IsLowStock(p)})
	}
	return views
}

// LowStockWarning is empty unless the product is low on stock. Reaching the
// threshold and falling below it read differently.
func LowStockWarning(p model.Product) string {
	if !IsLowStock(p) {
		return ""
	}
	limit := *p.StockAlertThreshold
	if p.StockTotal == limit {
		return fmt.Sprintf("Atenção: O produto '%s' atingiu o nível de estoque para aviso (%d unidades).", p.Name, limit)
	}
	return fmt.Sprintf("Atenção: O produto '%s' está com estoque baixo (%d unidades), abaixo do nível de aviso de %d.", p.Name, p.StockTotal, limit)
}

func LowStockWarnings(products []model.Product) []string {
	warnings := []string{}
	for _, p := range products {
		if msg := LowStockWarning(p); msg != "" {
			warnings = append(warnings, msg)
		}
	}
	return warnings
}

type OrderClientView struct {
	model.OrderClient
	Outstanding decimal.Decimal `json:"outstanding"`
}

func ToOrderClientViews(orders []model.OrderClient) []OrderClientView {
	views := make([]OrderClientView, 0, len(orders))
	for _, o := range orders {
		views = append(views, OrderClientView{OrderClient: o, Outstanding: o.Outstanding()})
	}
	return views
}

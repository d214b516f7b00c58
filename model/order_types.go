package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderOpen      = "open"
	OrderPaid      = "paid"
	OrderCancelled = "cancelled"
)

type OrderCategory struct {
	ID          int64  `db:"id" json:"id"`
	TenantID    string `db:"tenant_id" json:"-"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
}

// OrderClient is a customer order with its billed and paid amounts.
type OrderClient struct {
	ID           int64           `db:"id" json:"id"`
	TenantID     string          `db:"tenant_id" json:"-"`
	Name         string          `db:"name" json:"name"`
	Document     string          `db:"document" json:"document"`
	Email        string          `db:"email" json:"email"`
	Phone        string          `db:"phone" json:"phone"`
	CategoryID   int64           `db:"category_id" json:"categoryId"`
	CategoryName string          `db:"category_name" json:"categoryName"`
	OrderDate    time.Time       `db:"order_date" json:"orderDate"`
	TotalAmount  decimal.Decimal `db:"total_amount" json:"totalAmount"`
	PaidAmount   decimal.Decimal `db:"paid_amount" json:"paidAmount"`
	Status       string          `db:"status" json:"status"`
	Notes        string          `db:"notes" json:"notes"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`
}

// Outstanding is what is still owed on the order.
func (o OrderClient) Outstanding() decimal.Decimal {
	if o.Status == OrderCancelled {
		return decimal.Zero
	}
	rest := o.TotalAmount.Sub(o.PaidAmount)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

type OrderFilters struct {
	Query      string
	CategoryID int64
	Status     string
	From       *time.Time
	To         *time.Time
}

type OrderTotals struct {
	Count          int             `json:"count"`
	CancelledCount int             `json:"cancelledCount"`
	Total          decimal.Decimal `json:"total"`
	Paid           decimal.Decimal `json:"paid"`
	Outstanding    decimal.Decimal `json:"outstanding"`
}

type CategoryTotals struct {
	CategoryID   int64  `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	OrderTotals
}

type OrderSummary struct {
	From       *time.Time       `json:"from"`
	To         *time.Time       `json:"to"`
	Overall    OrderTotals      `json:"overall"`
	ByCategory []CategoryTotals `json:"byCategory"`
}

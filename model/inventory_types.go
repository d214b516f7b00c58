package model

import "time"

type Category struct {
	ID          int64  `db:"id" json:"id"`
	TenantID    string `db:"tenant_id" json:"-"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
}

type TransactionType struct {
	ID          int64  `db:"id" json:"id"`
	TenantID    string `db:"tenant_id" json:"-"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	IsEntry     bool   `db:"is_entry" json:"isEntry"`
}

// Product stock is not stored: StockTotal is the count of available items.
type Product struct {
	ID                  int64     `db:"id" json:"id"`
	TenantID            string    `db:"tenant_id" json:"-"`
	Name                string    `db:"name" json:"name"`
	Description         string    `db:"description" json:"description"`
	CategoryID          *int64    `db:"category_id" json:"categoryId"`
	CategoryName        *string   `db:"category_name" json:"categoryName"`
	CreatedAt           time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time `db:"updated_at" json:"updatedAt"`
	ResponsibleUser     string    `db:"responsible_user" json:"responsibleUser"`
	Active              bool      `db:"active" json:"active"`
	StockAlertThreshold *int      `db:"stock_alert_threshold" json:"stockAlertThreshold"`
	StockTotal          int       `db:"stock_total" json:"stockTotal"`
}

type ProductFilters struct {
	Query      string
	CategoryID int64
}

type Transaction struct {
	ID          int64     `db:"id" json:"id"`
	TenantID    string    `db:"tenant_id" json:"-"`
	TypeID      int64     `db:"type_id" json:"typeId"`
	TypeName    string    `db:"type_name" json:"typeName"`
	IsEntry     bool      `db:"is_entry" json:"isEntry"`
	UserName    string    `db:"user_name" json:"user"`
	ProductID   int64     `db:"product_id" json:"productId"`
	ProductName string    `db:"product_name" json:"productName"`
	OccurredAt  time.Time `db:"occurred_at" json:"date"`
	Quantity    int       `db:"quantity" json:"quantity"`
	Notes       string    `db:"notes" json:"notes"`
	Archived    bool      `db:"archived" json:"archived"`
}

type TransactionFilters struct {
	ProductID       int64
	TypeID          int64
	IncludeArchived bool
	From            *time.Time
	To              *time.Time
}

// Item is one tracked unit of a product.
type Item struct {
	ID            int64     `db:"id" json:"id"`
	TenantID      string    `db:"tenant_id" json:"-"`
	ProductID     int64     `db:"product_id" json:"productId"`
	Lot           *string   `db:"lot" json:"lot"`
	TransactionID int64     `db:"transaction_id" json:"transactionId"`
	Available     bool      `db:"available" json:"available"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

type LotBalance struct {
	Lot       *string `db:"lot" json:"lot"`
	Available int     `db:"available" json:"available"`
}

// ProductMovement is the per-product sum of one direction in a period.
type ProductMovement struct {
	ProductID   int64  `db:"product_id" json:"productId"`
	ProductName string `db:"product_name" json:"productName"`
	Quantity    int    `db:"quantity" json:"quantity"`
}

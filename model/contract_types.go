package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	BillingMonthly = "monthly"
	BillingAnnual  = "annual"
)

type System struct {
	ID          int64     `db:"id" json:"id"`
	TenantID    string    `db:"tenant_id" json:"-"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

type Technician struct {
	ID        int64     `db:"id" json:"id"`
	TenantID  string    `db:"tenant_id" json:"-"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Client is a service contract held by a customer.
type Client struct {
	ID             int64               `db:"id" json:"id"`
	TenantID       string              `db:"tenant_id" json:"-"`
	Name           string              `db:"name" json:"name"`
	Document       string              `db:"document" json:"document"`
	Email          string              `db:"email" json:"email"`
	Phone          string              `db:"phone" json:"phone"`
	SystemID       int64               `db:"system_id" json:"systemId"`
	SystemName     string              `db:"system_name" json:"systemName"`
	TechnicianID   *int64              `db:"technician_id" json:"technicianId"`
	TechnicianName *string             `db:"technician_name" json:"technicianName"`
	BillingCycle   string              `db:"billing_cycle" json:"billingCycle"`
	MonthlyFee     decimal.NullDecimal `db:"monthly_fee" json:"monthlyFee"`
	AnnualFee      decimal.NullDecimal `db:"annual_fee" json:"annualFee"`
	StartDate      time.Time           `db:"start_date" json:"startDate"`
	ExpirationDate *time.Time          `db:"expiration_date" json:"expirationDate"`
	Blocked        bool                `db:"blocked" json:"blocked"`
	Active         bool                `db:"active" json:"active"`
	Notes          string              `db:"notes" json:"notes"`
	CreatedAt      time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time           `db:"updated_at" json:"updatedAt"`
}

type ClientFilters struct {
	Query          string
	SystemID       int64
	TechnicianID   int64
	Active         *bool
	Blocked        *bool
	ExpiringBefore *time.Time
}

// RenewalHistory is the audit row written for each renewed contract.
// Rows are never updated or deleted.
type RenewalHistory struct {
	ID            int64               `db:"id" json:"id"`
	TenantID      string              `db:"tenant_id" json:"-"`
	ClientID      int64               `db:"client_id" json:"clientId"`
	ClientName    string              `db:"client_name" json:"clientName"`
	OldMonthlyFee decimal.NullDecimal `db:"old_monthly_fee" json:"oldMonthlyFee"`
	NewMonthlyFee decimal.NullDecimal `db:"new_monthly_fee" json:"newMonthlyFee"`
	OldAnnualFee  decimal.NullDecimal `db:"old_annual_fee" json:"oldAnnualFee"`
	NewAnnualFee  decimal.NullDecimal `db:"new_annual_fee" json:"newAnnualFee"`
	OldExpiration *time.Time          `db:"old_expiration" json:"oldExpiration"`
	NewExpiration time.Time           `db:"new_expiration" json:"newExpiration"`
	Percentage    decimal.Decimal     `db:"percentage" json:"percentage"`
	Months        int                 `db:"months" json:"months"`
	RenewedBy     string              `db:"renewed_by" json:"renewedBy"`
	RenewedAt     time.Time           `db:"renewed_at" json:"renewedAt"`
}

type RenewalFilters struct {
	ClientID int64
	From     *time.Time
	To       *time.Time
}

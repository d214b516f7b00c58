package client

import (
	"errors"
	"strings"

	"atec/database"
	"atec/httperr"
	"atec/model"
	"atec/params"

	"github.com/shopspring/decimal"
)

// Payload is the body accepted by create and update.
type Payload struct {
	Name           string              `json:"name"`
	Document       string              `json:"document"`
	Email          string              `json:"email"`
	Phone          string              `json:"phone"`
	SystemID       int64               `json:"systemId"`
	TechnicianID   *int64              `json:"technicianId"`
	BillingCycle   string              `json:"billingCycle"`
	MonthlyFee     decimal.NullDecimal `json:"monthlyFee"`
	AnnualFee      decimal.NullDecimal `json:"annualFee"`
	StartDate      string              `json:"startDate"`
	ExpirationDate string              `json:"expirationDate"`
	Blocked        bool                `json:"blocked"`
	Active         *bool               `json:"active"`
	Notes          string              `json:"notes"`
}

// ToModel validates the payload and resolves its references within the tenant.
func (p Payload) ToModel(q database.DBTX, tenantID string) (*model.Client, error) {
	v := httperr.NewValidationError()
	c := &model.Client{
		TenantID:     tenantID,
		Name:         strings.TrimSpace(p.Name),
		Document:     strings.TrimSpace(p.Document),
		Email:        strings.TrimSpace(p.Email),
		Phone:        strings.TrimSpace(p.Phone),
		SystemID:     p.SystemID,
		TechnicianID: p.TechnicianID,
		BillingCycle: strings.ToLower(strings.TrimSpace(p.BillingCycle)),
		MonthlyFee:   p.MonthlyFee,
		AnnualFee:    p.AnnualFee,
		Blocked:      p.Blocked,
		Active:       true,
		Notes:        strings.TrimSpace(p.Notes),
	}
	if p.Active != nil {
		c.Active = *p.Active
	}

	if c.Name == "" {
		v.Add("name", "O nome do cliente é obrigatório.")
	}
	if c.SystemID <= 0 {
		v.Add("systemId", "Selecione o sistema contratado.")
	} else if _, err := database.GetSystem(q, tenantID, c.SystemID); err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		v.Add("systemId", "Sistema não encontrado.")
	}
	if c.TechnicianID != nil {
		if _, err := database.GetTechnician(q, tenantID, *c.TechnicianID); err != nil {
			if !errors.Is(err, database.ErrNotFound) {
				return nil, err
			}
			v.Add("technicianId", "Técnico não encontrado.")
		}
	}
	validateFees(v, c)

	start, err := params.ParseDate(p.StartDate)
	switch {
	case err != nil:
		v.Add("startDate", "Data de início inválida.")
	case start == nil:
		v.Add("startDate", "A data de início é obrigatória.")
	default:
		c.StartDate = *start
	}
	exp, err := params.ParseDate(p.ExpirationDate)
	if err != nil {
		v.Add("expirationDate", "Data de vencimento inválida.")
	}
	c.ExpirationDate = exp
	if start != nil && exp != nil && exp.Before(*start) {
		v.Add("expirationDate", "O vencimento não pode ser anterior ao início.")
	}

	if err := v.OrNil(); err != nil {
		return nil, err
	}
	return c, nil
}

// validateFees checks that the fee matching the billing cycle is present
// and that no fee is negative.
func validateFees(v *httperr.ValidationError, c *model.Client) {
	switch c.BillingCycle {
	case "":
		c.BillingCycle = model.BillingMonthly
		if !c.MonthlyFee.Valid && c.AnnualFee.Valid {
			c.BillingCycle = model.BillingAnnual
		}
	case model.BillingMonthly, model.BillingAnnual:
	default:
		v.Add("billingCycle", "Ciclo de cobrança inválido (use monthly ou annual).")
		return
	}
	if !c.MonthlyFee.Valid && !c.AnnualFee.Valid {
		v.Add("monthlyFee", "Informe a mensalidade ou a anuidade.")
		return
	}
	if c.BillingCycle == model.BillingMonthly && !c.MonthlyFee.Valid {
		v.Add("monthlyFee", "Contratos mensais exigem a mensalidade.")
	}
	if c.BillingCycle == model.BillingAnnual && !c.AnnualFee.Valid {
		v.Add("annualFee", "Contratos anuais exigem a anuidade.")
	}
	if c.MonthlyFee.Valid && c.MonthlyFee.Decimal.IsNegative() {
		v.Add("monthlyFee", "A mensalidade não pode ser negativa.")
	}
	if c.AnnualFee.Valid && c.AnnualFee.Decimal.IsNegative() {
		v.Add("annualFee", "A anuidade não pode ser negativa.")
	}
}

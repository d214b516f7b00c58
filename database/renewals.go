package database

import (
	"fmt"

	"atec/model"
)

const renewalSelect = `
	SELECT r.id, r.tenant_id, r.client_id, c.name AS client_name,
		r.old_monthly_fee, r.new_monthly_fee, r.old_annual_fee, r.new_annual_fee,
		r.old_expiration, r.new_expiration, r.percentage, r.months, r.renewed_by, r.renewed_at
	FROM renewal_history r
	JOIN clients c ON c.id = r.client_id`

// InsertRenewalInTx appends an audit row. There is no update or delete counterpart.
func InsertRenewalInTx(q DBTX, h *model.RenewalHistory) error {
	id, err := insertReturningID(q, `
		INSERT INTO renewal_history (
			tenant_id, client_id, old_monthly_fee, new_monthly_fee, old_annual_fee, new_annual_fee,
			old_expiration, new_expiration, percentage, months, renewed_by, renewed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.TenantID, h.ClientID, h.OldMonthlyFee, h.NewMonthlyFee, h.OldAnnualFee, h.NewAnnualFee,
		h.OldExpiration, h.NewExpiration, h.Percentage, h.Months, h.RenewedBy, h.RenewedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record renewal of client %d: %w", h.ClientID, classify(err))
	}
	h.ID = id
	return nil
}

func ListRenewals(q DBTX, tenantID string, filters model.RenewalFilters, page model.Page) ([]model.RenewalHistory, int, error) {
	f := newFilter("r.tenant_id", tenantID)
	if filters.ClientID > 0 {
		f.add("r.client_id = ?", filters.ClientID)
	}
	if filters.From != nil {
		f.add("r.renewed_at >= ?", *filters.From)
	}
	if filters.To != nil {
		f.add("r.renewed_at <= ?", *filters.To)
	}
	total, err := count(q, "renewal_history r", f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count renewals: %w", err)
	}
	var rows []model.RenewalHistory
	query := renewalSelect + f.where() + ` ORDER BY r.renewed_at DESC, r.id DESC` + limitOffset(page.Size, page.Offset())
	if err := selectAll(q, &rows, query, f.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list renewals: %w", err)
	}
	return rows, total, nil
}

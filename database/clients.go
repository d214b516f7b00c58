package database

import (
	"fmt"

	"atec/model"
)

const clientSelect = `
	SELECT c.id, c.tenant_id, c.name, c.document, c.email, c.phone,
		c.system_id, s.name AS system_name, c.technician_id, t.name AS technician_name,
		c.billing_cycle, c.monthly_fee, c.annual_fee, c.start_date, c.expiration_date,
		c.blocked, c.active, c.notes, c.created_at, c.updated_at
	FROM clients c
	JOIN systems s ON s.id = c.system_id
	LEFT JOIN technicians t ON t.id = c.technician_id`

const clientFrom = `clients c JOIN systems s ON s.id = c.system_id LEFT JOIN technicians t ON t.id = c.technician_id`

func clientFilter(tenantID string, filters model.ClientFilters) *filter {
	f := newFilter("c.tenant_id", tenantID)
	f.search(filters.Query, "c.name", "c.document")
	if filters.SystemID > 0 {
		f.add("c.system_id = ?", filters.SystemID)
	}
	if filters.TechnicianID > 0 {
		f.add("c.technician_id = ?", filters.TechnicianID)
	}
	if filters.Active != nil {
		f.add("c.active = ?", *filters.Active)
	}
	if filters.Blocked != nil {
		f.add("c.blocked = ?", *filters.Blocked)
	}
	if filters.ExpiringBefore != nil {
		f.add("c.expiration_date IS NOT NULL AND c.expiration_date <= ?", *filters.ExpiringBefore)
	}
	return f
}

func ListClients(q DBTX, tenantID string, filters model.ClientFilters, page model.Page) ([]model.Client, int, error) {
	f := clientFilter(tenantID, filters)
	total, err := count(q, clientFrom, f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}
	var clients []model.Client
	query := clientSelect + f.where() + ` ORDER BY c.name, c.id` + limitOffset(page.Size, page.Offset())
	if err := selectAll(q, &clients, query, f.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, total, nil
}

func GetClient(q DBTX, tenantID string, id int64) (*model.Client, error) {
	var c model.Client
	if err := get(q, &c, clientSelect+` WHERE c.tenant_id = ? AND c.id = ?`, tenantID, id); err != nil {
		return nil, fmt.Errorf("failed to get client %d: %w", id, classify(err))
	}
	return &c, nil
}

func CreateClient(q DBTX, c *model.Client) error {
	c.CreatedAt = Now()
	c.UpdatedAt = c.CreatedAt
	id, err := insertReturningID(q, `
		INSERT INTO clients (
			tenant_id, name, document, email, phone, system_id, technician_id,
			billing_cycle, monthly_fee, annual_fee, start_date, expiration_date,
			blocked, active, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.TenantID, c.Name, c.Document, c.Email, c.Phone, c.SystemID, c.TechnicianID,
		c.BillingCycle, c.MonthlyFee, c.AnnualFee, c.StartDate, c.ExpirationDate,
		c.Blocked, c.Active, c.Notes, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create client %q: %w", c.Name, classify(err))
	}
	c.ID = id
	return nil
}

func UpdateClient(q DBTX, c *model.Client) error {
	c.UpdatedAt = Now()
	err := execOne(q, `
		UPDATE clients SET
			name = ?, document = ?, email = ?, phone = ?, system_id = ?, technician_id = ?,
			billing_cycle = ?, monthly_fee = ?, annual_fee = ?, start_date = ?, expiration_date = ?,
			blocked = ?, active = ?, notes = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?`,
		c.Name, c.Document, c.Email, c.Phone, c.SystemID, c.TechnicianID,
		c.BillingCycle, c.MonthlyFee, c.AnnualFee, c.StartDate, c.ExpirationDate,
		c.Blocked, c.Active, c.Notes, c.UpdatedAt,
		c.TenantID, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client %d: %w", c.ID, classify(err))
	}
	return nil
}

// UpdateClientRenewalInTx writes the fields touched by a renewal.
func UpdateClientRenewalInTx(q DBTX, c *model.Client) error {
	c.UpdatedAt = Now()
	err := execOne(q, `
		UPDATE clients SET monthly_fee = ?, annual_fee = ?, expiration_date = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?`,
		c.MonthlyFee, c.AnnualFee, c.ExpirationDate, c.UpdatedAt, c.TenantID, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to apply renewal to client %d: %w", c.ID, classify(err))
	}
	return nil
}

func SetClientBlocked(q DBTX, tenantID string, id int64, blocked bool) error {
	err := execOne(q, `UPDATE clients SET blocked = ?, updated_at = ? WHERE tenant_id = ? AND id = ?`,
		blocked, Now(), tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to set blocked on client %d: %w", id, classify(err))
	}
	return nil
}

func SetClientActive(q DBTX, tenantID string, id int64, active bool) error {
	err := execOne(q, `UPDATE clients SET active = ?, updated_at = ? WHERE tenant_id = ? AND id = ?`,
		active, Now(), tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to set active on client %d: %w", id, classify(err))
	}
	return nil
}

// DeleteClient fails with ErrProtected once the contract has renewal history.
func DeleteClient(q DBTX, tenantID string, id int64) error {
	if err := execOne(q, `DELETE FROM clients WHERE tenant_id = ? AND id = ?`, tenantID, id); err != nil {
		return fmt.Errorf("failed to delete client %d: %w", id, classify(err))
	}
	return nil
}

package database

import (
	"fmt"

	"atec/model"
)

const technicianColumns = `id, tenant_id, name, email, phone, created_at`

func ListTechnicians(q DBTX, tenantID, search string, page model.Page) ([]model.Technician, int, error) {
	f := newFilter("tenant_id", tenantID)
	f.search(search, "name")
	total, err := count(q, "technicians", f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count technicians: %w", err)
	}
	var techs []model.Technician
	query := `SELECT ` + technicianColumns + ` FROM technicians` + f.where() + ` ORDER BY name` + limitOffset(page.Size, page.Offset())
	if err := selectAll(q, &techs, query, f.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list technicians: %w", err)
	}
	return techs, total, nil
}

func GetTechnician(q DBTX, tenantID string, id int64) (*model.Technician, error) {
	var t model.Technician
	query := `SELECT ` + technicianColumns + ` FROM technicians WHERE tenant_id = ? AND id = ?`
	if err := get(q, &t, query, tenantID, id); err != nil {
		return nil, fmt.Errorf("failed to get technician %d: %w", id, classify(err))
	}
	return &t, nil
}

func CreateTechnician(q DBTX, t *model.Technician) error {
	t.CreatedAt = Now()
	id, err := insertReturningID(q,
		`INSERT INTO technicians (tenant_id, name, email, phone, created_at) VALUES (?, ?, ?, ?, ?)`,
		t.TenantID, t.Name, t.Email, t.Phone, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create technician %q: %w", t.Name, classify(err))
	}
	t.ID = id
	return nil
}

func UpdateTechnician(q DBTX, t *model.Technician) error {
	err := execOne(q, `UPDATE technicians SET name = ?, email = ?, phone = ? WHERE tenant_id = ? AND id = ?`,
		t.Name, t.Email, t.Phone, t.TenantID, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update technician %d: %w", t.ID, classify(err))
	}
	return nil
}

// DeleteTechnician detaches the technician from its contracts.
func DeleteTechnician(q DBTX, tenantID string, id int64) error {
	if err := execOne(q, `DELETE FROM technicians WHERE tenant_id = ? AND id = ?`, tenantID, id); err != nil {
		return fmt.Errorf("failed to delete technician %d: %w", id, classify(err))
	}
	return nil
}

package database

import (
	"fmt"

	"atec/model"
)

const systemColumns = `id, tenant_id, name, description, created_at`

func ListSystems(q DBTX, tenantID, search string, page model.Page) ([]model.System, int, error) {
	f := newFilter("tenant_id", tenantID)
	f.search(search, "name")
	total, err := count(q, "systems", f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count systems: %w", err)
	}
	var systems []model.System
	query := `SELECT ` + systemColumns + ` FROM systems` + f.where() + ` ORDER BY name` + limitOffset(page.Size, page.Offset())
	if err := selectAll(q, &systems, query, f.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list systems: %w", err)
	}
	return systems, total, nil
}

func GetSystem(q DBTX, tenantID string, id int64) (*model.System, error) {
	var s model.System
	query := `SELECT ` + systemColumns + ` FROM systems WHERE tenant_id = ? AND id = ?`
	if err := get(q, &s, query, tenantID, id); err != nil {
		return nil, fmt.Errorf("failed to get system %d: %w", id, classify(err))
	}
	return &s, nil
}

func GetSystemByName(q DBTX, tenantID, name string) (*model.System, error) {
	var s model.System
	query := `SELECT ` + systemColumns + ` FROM systems WHERE tenant_id = ? AND LOWER(name) = LOWER(?)`
	if err := get(q, &s, query, tenantID, name); err != nil {
		return nil, fmt.Errorf("failed to get system %q: %w", name, classify(err))
	}
	return &s, nil
}

func CreateSystem(q DBTX, s *model.System) error {
	s.CreatedAt = Now()
	id, err := insertReturningID(q,
		`INSERT INTO systems (tenant_id, name, description, created_at) VALUES (?, ?, ?, ?)`,
		s.TenantID, s.Name, s.Description, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create system %q: %w", s.Name, classify(err))
	}
	s.ID = id
	return nil
}

func UpdateSystem(q DBTX, s *model.System) error {
	err := execOne(q, `UPDATE systems SET name = ?, description = ? WHERE tenant_id = ? AND id = ?`,
		s.Name, s.Description, s.TenantID, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update system %d: %w", s.ID, classify(err))
	}
	return nil
}

// DeleteSystem fails with ErrProtected while contracts reference the system.
func DeleteSystem(q DBTX, tenantID string, id int64) error {
	if err := execOne(q, `DELETE FROM systems WHERE tenant_id = ? AND id = ?`, tenantID, id); err != nil {
		return fmt.Errorf("failed to delete system %d: %w", id, classify(err))
	}
	return nil
}

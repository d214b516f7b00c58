package database

import (
	"fmt"

	"atec/model"
)

func CreateTenant(q DBTX, id, name string) error {
	const query = `INSERT INTO tenants (id, name, active, created_at) VALUES (?, ?, ?, ?)`
	if _, err := exec(q, query, id, name, true, Now()); err != nil {
		return fmt.Errorf("failed to create tenant %s: %w", id, classify(err))
	}
	return nil
}

func GetTenant(q DBTX, id string) (*model.Tenant, error) {
	var t model.Tenant
	const query = `SELECT id, name, active, created_at FROM tenants WHERE id = ?`
	if err := get(q, &t, query, id); err != nil {
		return nil, fmt.Errorf("failed to get tenant %s: %w", id, classify(err))
	}
	return &t, nil
}

func GetAllTenants(q DBTX) ([]model.Tenant, error) {
	var tenants []model.Tenant
	if err := selectAll(q, &tenants, `SELECT id, name, active, created_at FROM tenants ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, nil
}

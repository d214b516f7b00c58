package database

import (
	"fmt"

	"atec/model"
)

func GetAllTransactionTypes(q DBTX, tenantID string) ([]model.TransactionType, error) {
	var types []model.TransactionType
	err := selectAll(q, &types, `SELECT id, tenant_id, name, description, is_entry FROM transaction_types WHERE tenant_id = ? ORDER BY name`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction types: %w", err)
	}
	return types, nil
}

func GetTransactionType(q DBTX, tenantID string, id int64) (*model.TransactionType, error) {
	var t model.TransactionType
	err := get(q, &t, `SELECT id, tenant_id, name, description, is_entry FROM transaction_types WHERE tenant_id = ? AND id = ?`, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction type %d: %w", id, classify(err))
	}
	return &t, nil
}

func CreateTransactionType(q DBTX, t *model.TransactionType) error {
	id, err := insertReturningID(q, `INSERT INTO transaction_types (tenant_id, name, description, is_entry) VALUES (?, ?, ?, ?)`,
		t.TenantID, t.Name, t.Description, t.IsEntry)
	if err != nil {
		return fmt.Errorf("failed to create transaction type %q: %w", t.Name, classify(err))
	}
	t.ID = id
	return nil
}

func UpdateTransactionType(q DBTX, t *model.TransactionType) error {
	err := execOne(q, `UPDATE transaction_types SET name = ?, description = ?, is_entry = ? WHERE tenant_id = ? AND id = ?`,
		t.Name, t.Description, t.IsEntry, t.TenantID, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction type %d: %w", t.ID, classify(err))
	}
	return nil
}

func DeleteTransactionType(q DBTX, tenantID string, id int64) error {
	if err := execOne(q, `DELETE FROM transaction_types WHERE tenant_id = ? AND id = ?`, tenantID, id); err != nil {
		return fmt.Errorf("failed to delete transaction type %d: %w", id, classify(err))
	}
	return nil
}

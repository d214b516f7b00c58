package database

import (
	"fmt"

	"atec/model"
)

func ListOrderCategories(q DBTX, tenantID, search string, page model.Page) ([]model.OrderCategory, int, error) {
	f := newFilter("tenant_id", tenantID)
	f.search(search, "name")
	total, err := count(q, "order_categories", f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count order categories: %w", err)
	}
	var categories []model.OrderCategory
	query := `SELECT id, tenant_id, name, description FROM order_categories` + f.where() + ` ORDER BY name` + limitOffset(page.Size, page.Offset())
	if err := selectAll(q, &categories, query, f.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list order categories: %w", err)
	}
	return categories, total, nil
}

func GetOrderCategory(q DBTX, tenantID string, id int64) (*model.OrderCategory, error) {
	var c model.OrderCategory
	err := get(q, &c, `SELECT id, tenant_id, name, description FROM order_categories WHERE tenant_id = ? AND id = ?`, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order category %d: %w", id, classify(err))
	}
	return &c, nil
}

func CreateOrderCategory(q DBTX, c *model.OrderCategory) error {
	id, err := insertReturningID(q, `INSERT INTO order_categories (tenant_id, name, description) VALUES (?, ?, ?)`,
		c.TenantID, c.Name, c.Description)
	if err != nil {
		return fmt.Errorf("failed to create order category %q: %w", c.Name, classify(err))
	}
	c.ID = id
	return nil
}

func UpdateOrderCategory(q DBTX, c *model.OrderCategory) error {
	err := execOne(q, `UPDATE order_categories SET name = ?, description = ? WHERE tenant_id = ? AND id = ?`,
		c.Name, c.Description, c.TenantID, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update order category %d: %w", c.ID, classify(err))
	}
	return nil
}

func CountOrdersInCategory(q DBTX, tenantID string, id int64) (int, error) {
	var n int
	if err := get(q, &n, `SELECT COUNT(*) FROM order_clients WHERE tenant_id = ? AND category_id = ?`, tenantID, id); err != nil {
		return 0, fmt.Errorf("failed to count orders of category %d: %w", id, err)
	}
	return n, nil
}

func DeleteOrderCategory(q DBTX, tenantID string, id int64) error {
	if err := execOne(q, `DELETE FROM order_categories WHERE tenant_id = ? AND id = ?`, tenantID, id); err != nil {
		return fmt.Errorf("failed to delete order category %d: %w", id, classify(err))
	}
	return nil
}

package database

import (
	"fmt"

	"atec/model"
)

func ListCategories(q DBTX, tenantID, search string, page model.Page) ([]model.Category, int, error) {
	f := newFilter("tenant_id", tenantID)
	f.search(search, "name")
	total, err := count(q, "categories", f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}
	var categories []model.Category
	query := `SELECT id, tenant_id, name, description FROM categories` + f.where() + ` ORDER BY name` + limitOffset(page.Size, page.Offset())
	if err := selectAll(q, &categories, query, f.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, total, nil
}

func GetCategory(q DBTX, tenantID string, id int64) (*model.Category, error) {
	var c model.Category
	err := get(q, &c, `SELECT id, tenant_id, name, description FROM categories WHERE tenant_id = ? AND id = ?`, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category %d: %w", id, classify(err))
	}
	return &c, nil
}

func CreateCategory(q DBTX, c *model.Category) error {
	id, err := insertReturningID(q, `INSERT INTO categories (tenant_id, name, description) VALUES (?, ?, ?)`,
		c.TenantID, c.Name, c.Description)
	if err != nil {
		return fmt.Errorf("failed to create category %q: %w", c.Name, classify(err))
	}
	c.ID = id
	return nil
}

func UpdateCategory(q DBTX, c *model.Category) error {
	err := execOne(q, `UPDATE categories SET name = ?, description = ? WHERE tenant_id = ? AND id = ?`,
		c.Name, c.Description, c.TenantID, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update category %d: %w", c.ID, classify(err))
	}
	return nil
}

func CountProductsInCategory(q DBTX, tenantID string, id int64) (int, error) {
	var n int
	if err := get(q, &n, `SELECT COUNT(*) FROM products WHERE tenant_id = ? AND category_id = ?`, tenantID, id); err != nil {
		return 0, fmt.Errorf("failed to count products of category %d: %w", id, err)
	}
	return n, nil
}

func DeleteCategory(q DBTX, tenantID string, id int64) error {
	if err := execOne(q, `DELETE FROM categories WHERE tenant_id = ? AND id = ?`, tenantID, id); err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, classify(err))
	}
	return nil
}

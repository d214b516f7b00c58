package database

import (
	"fmt"

	"atec/model"
)

const productSelect = `
	SELECT p.id, p.tenant_id, p.name, p.description, p.category_id, c.name AS category_name,
		p.created_at, p.updated_at, p.responsible_user, p.active, p.stock_alert_threshold,
		(SELECT COUNT(*) FROM items i WHERE i.product_id = p.id AND i.available = ?) AS stock_total
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

// ListActiveProducts returns active products with their available stock.
func ListActiveProducts(q DBTX, tenantID string, filters model.ProductFilters, page model.Page) ([]model.Product, int, error) {
	f := newFilter("p.tenant_id", tenantID)
	f.add("p.active = ?", true)
	f.search(filters.Query, "p.name", "p.description")
	if filters.CategoryID > 0 {
		f.add("p.category_id = ?", filters.CategoryID)
	}
	total, err := count(q, "products p", f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}
	args := append([]interface{}{true}, f.args...)
	var products []model.Product
	query := productSelect + f.where() + ` ORDER BY p.created_at DESC, p.id DESC` + limitOffset(page.Size, page.Offset())
	if err := selectAll(q, &products, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// ListLowStockProducts returns every active product of the tenant with
// 0 < stock <= alert threshold, newest first.
func ListLowStockProducts(q DBTX, tenantID string) ([]model.Product, error) {
	var products []model.Product
	query := `SELECT * FROM (` + productSelect + ` WHERE p.tenant_id = ? AND p.active = ?) s
		WHERE s.stock_alert_threshold IS NOT NULL AND s.stock_total > 0 AND s.stock_total <= s.stock_alert_threshold
		ORDER BY s.created_at DESC, s.id DESC`
	if err := selectAll(q, &products, query, true, tenantID, true); err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	return products, nil
}

func GetProduct(q DBTX, tenantID string, id int64) (*model.Product, error) {
	var p model.Product
	if err := get(q, &p, productSelect+` WHERE p.tenant_id = ? AND p.id = ?`, true, tenantID, id); err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, classify(err))
	}
	return &p, nil
}

func CreateProduct(q DBTX, p *model.Product) error {
	p.CreatedAt = Now()
	p.UpdatedAt = p.CreatedAt
	id, err := insertReturningID(q, `
		INSERT INTO products (
			tenant_id, name, description, category_id, created_at, updated_at,
			responsible_user, active, stock_alert_threshold
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.TenantID, p.Name, p.Description, p.CategoryID, p.CreatedAt, p.UpdatedAt,
		p.ResponsibleUser, p.Active, p.StockAlertThreshold,
	)
	if err != nil {
		return fmt.Errorf("failed to create product %q: %w", p.Name, classify(err))
	}
	p.ID = id
	return nil
}

func UpdateProduct(q DBTX, p *model.Product) error {
	p.UpdatedAt = Now()
	err := execOne(q, `
		UPDATE products SET name = ?, description = ?, category_id = ?, updated_at = ?,
			responsible_user = ?, active = ?, stock_alert_threshold = ?
		WHERE tenant_id = ? AND id = ?`,
		p.Name, p.Description, p.CategoryID, p.UpdatedAt,
		p.ResponsibleUser, p.Active, p.StockAlertThreshold,
		p.TenantID, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", p.ID, classify(err))
	}
	return nil
}

func DeactivateProduct(q DBTX, tenantID string, id int64) error {
	err := execOne(q, `UPDATE products SET active = ?, updated_at = ? WHERE tenant_id = ? AND id = ?`,
		false, Now(), tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate product %d: %w", id, classify(err))
	}
	return nil
}

func DeleteProduct(q DBTX, tenantID string, id int64) error {
	if err := execOne(q, `DELETE FROM products WHERE tenant_id = ? AND id = ?`, tenantID, id); err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, classify(err))
	}
	return nil
}

func CountProductTransactions(q DBTX, tenantID string, id int64) (int, error) {
	var n int
	if err := get(q, &n, `SELECT COUNT(*) FROM transactions WHERE tenant_id = ? AND product_id = ?`, tenantID, id); err != nil {
		return 0, fmt.Errorf("failed to count transactions of product %d: %w", id, err)
	}
	return n, nil
}

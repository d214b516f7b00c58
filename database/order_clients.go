package database

import (
	"fmt"

	"atec/model"
)

const orderClientSelect = `
	SELECT o.id, o.tenant_id, o.name, o.document, o.email, o.phone, o.category_id,
		c.name AS category_name, o.order_date, o.total_amount, o.paid_amount, o.status,
		o.notes, o.created_at, o.updated_at
	FROM order_clients o
	JOIN order_categories c ON c.id = o.category_id`

func orderFilter(tenantID string, filters model.OrderFilters) *filter {
	f := newFilter("o.tenant_id", tenantID)
	f.search(filters.Query, "o.name", "o.document")
	if filters.CategoryID > 0 {
		f.add("o.category_id = ?", filters.CategoryID)
	}
	if filters.Status != "" {
		f.add("o.status = ?", filters.Status)
	}
	if filters.From != nil {
		f.add("o.order_date >= ?", *filters.From)
	}
	if filters.To != nil {
		f.add("o.order_date <= ?", *filters.To)
	}
	return f
}

func ListOrderClients(q DBTX, tenantID string, filters model.OrderFilters, page model.Page) ([]model.OrderClient, int, error) {
	f := orderFilter(tenantID, filters)
	total, err := count(q, "order_clients o", f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count order clients: %w", err)
	}
	var orders []model.OrderClient
	query := orderClientSelect + f.where() + ` ORDER BY o.order_date DESC, o.id DESC` + limitOffset(page.Size, page.Offset())
	if err := selectAll(q, &orders, query, f.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list order clients: %w", err)
	}
	return orders, total, nil
}

// OrdersForPeriod returns every matching order, oldest first.
func OrdersForPeriod(q DBTX, tenantID string, filters model.OrderFilters) ([]model.OrderClient, error) {
	f := orderFilter(tenantID, filters)
	var orders []model.OrderClient
	if err := selectAll(q, &orders, orderClientSelect+f.where()+` ORDER BY o.order_date, o.id`, f.args...); err != nil {
		return nil, fmt.Errorf("failed to list orders for period: %w", err)
	}
	return orders, nil
}

func GetOrderClient(q DBTX, tenantID string, id int64) (*model.OrderClient, error) {
	var o model.OrderClient
	if err := get(q, &o, orderClientSelect+` WHERE o.tenant_id = ? AND o.id = ?`, tenantID, id); err != nil {
		return nil, fmt.Errorf("failed to get order client %d: %w", id, classify(err))
	}
	return &o, nil
}

func CreateOrderClient(q DBTX, o *model.OrderClient) error {
	o.CreatedAt = Now()
	o.UpdatedAt = o.CreatedAt
	id, err := insertReturningID(q, `
		INSERT INTO order_clients (
			tenant_id, name, document, email, phone, category_id, order_date,
			total_amount, paid_amount, status, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.TenantID, o.Name, o.Document, o.Email, o.Phone, o.CategoryID, o.OrderDate,
		o.TotalAmount, o.PaidAmount, o.Status, o.Notes, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order client %q: %w", o.Name, classify(err))
	}
	o.ID = id
	return nil
}

func UpdateOrderClient(q DBTX, o *model.OrderClient) error {
	o.UpdatedAt = Now()
	err := execOne(q, `
		UPDATE order_clients SET name = ?, document = ?, email = ?, phone = ?, category_id = ?,
			order_date = ?, total_amount = ?, paid_amount = ?, status = ?, notes = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?`,
		o.Name, o.Document, o.Email, o.Phone, o.CategoryID,
		o.OrderDate, o.TotalAmount, o.PaidAmount, o.Status, o.Notes, o.UpdatedAt,
		o.TenantID, o.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order client %d: %w", o.ID, classify(err))
	}
	return nil
}

func DeleteOrderClient(q DBTX, tenantID string, id int64) error {
	if err := execOne(q, `DELETE FROM order_clients WHERE tenant_id = ? AND id = ?`, tenantID, id); err != nil {
		return fmt.Errorf("failed to delete order client %d: %w", id, classify(err))
	}
	return nil
}

package database

import (
	"fmt"
	"time"

	"atec/model"
)

func CountAvailableItems(q DBTX, tenantID string, productID int64) (int, error) {
	var n int
	err := get(q, &n, `SELECT COUNT(*) FROM items WHERE tenant_id = ? AND product_id = ? AND available = ?`,
		tenantID, productID, true)
	if err != nil {
		return 0, fmt.Errorf("failed to count available items of product %d: %w", productID, err)
	}
	return n, nil
}

// InsertItemsInTx creates quantity available units of one lot, all linked to the transaction.
func InsertItemsInTx(q DBTX, tenantID string, productID, transactionID int64, lot *string, quantity int, createdAt time.Time) error {
	stmt, err := q.Preparex(q.Rebind(`
		INSERT INTO items (tenant_id, product_id, lot, transaction_id, available, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("failed to prepare item insert statement: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < quantity; i++ {
		if _, err := stmt.Exec(tenantID, productID, lot, transactionID, true, createdAt); err != nil {
			return fmt.Errorf("failed to insert item %d of transaction %d: %w", i+1, transactionID, err)
		}
	}
	return nil
}

// AllocateItemsFIFOInTx consumes the quantity oldest available units of a product
// across lots, marks them unavailable and relinks them to the exit transaction.
// Nothing is modified when fewer than quantity units are available.
func AllocateItemsFIFOInTx(q DBTX, tenantID string, productID, transactionID int64, quantity int) ([]int64, error) {
	rows, err := q.Query(q.Rebind(`
		SELECT id FROM items
		WHERE tenant_id = ? AND product_id = ? AND available = ?
		ORDER BY created_at, id`+limitOffset(quantity, 0)),
		tenantID, productID, true,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query available items: %w", err)
	}

	ids := make([]int64, 0, quantity)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to read available items: %w", err)
	}
	rows.Close()

	if len(ids) < quantity {
		return nil, &InsufficientStockError{Available: len(ids), Required: quantity}
	}

	for _, id := range ids {
		if err := execOne(q, `UPDATE items SET available = ?, transaction_id = ? WHERE id = ?`, false, transactionID, id); err != nil {
			return nil, fmt.Errorf("failed to consume item %d: %w", id, err)
		}
	}
	return ids, nil
}

func GetTransactionItems(q DBTX, tenantID string, transactionID int64) ([]model.Item, error) {
	var items []model.Item
	err := selectAll(q, &items, `
		SELECT id, tenant_id, product_id, lot, transaction_id, available, created_at
		FROM items WHERE tenant_id = ? AND transaction_id = ? ORDER BY created_at, id`,
		tenantID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items of transaction %d: %w", transactionID, err)
	}
	return items, nil
}

// LotBalances returns available units per lot, oldest lot first.
func LotBalances(q DBTX, tenantID string, productID int64) ([]model.LotBalance, error) {
	var lots []model.LotBalance
	err := selectAll(q, &lots, `
		SELECT lot, COUNT(*) AS available
		FROM items WHERE tenant_id = ? AND product_id = ? AND available = ?
		GROUP BY lot ORDER BY MIN(created_at), MIN(id)`,
		tenantID, productID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list lots of product %d: %w", productID, err)
	}
	return lots, nil
}

// InsufficientStockError is returned before any unit is consumed.
type InsufficientStockError struct {
	Available int
	Required  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Estoque insuficiente. Disponível: %d, Requerido: %d", e.Available, e.Required)
}

package database

import (
	"fmt"

	"atec/model"
)

const transactionSelect = `
	SELECT t.id, t.tenant_id, t.type_id, tt.name AS type_name, tt.is_entry, t.user_name,
		t.product_id, p.name AS product_name, t.occurred_at, t.quantity, t.notes, t.archived
	FROM transactions t
	JOIN transaction_types tt ON tt.id = t.type_id
	JOIN products p ON p.id = t.product_id`

const transactionFrom = `transactions t JOIN transaction_types tt ON tt.id = t.type_id JOIN products p ON p.id = t.product_id`

func transactionFilter(tenantID string, filters model.TransactionFilters) *filter {
	f := newFilter("t.tenant_id", tenantID)
	if !filters.IncludeArchived {
		f.add("t.archived = ?", false)
	}
	if filters.ProductID > 0 {
		f.add("t.product_id = ?", filters.ProductID)
	}
	if filters.TypeID > 0 {
		f.add("t.type_id = ?", filters.TypeID)
	}
	if filters.From != nil {
		f.add("t.occurred_at >= ?", *filters.From)
	}
	if filters.To != nil {
		f.add("t.occurred_at <= ?", *filters.To)
	}
	return f
}

// ListTransactions returns transactions newest first.
func ListTransactions(q DBTX, tenantID string, filters model.TransactionFilters, page model.Page) ([]model.Transaction, int, error) {
	f := transactionFilter(tenantID, filters)
	total, err := count(q, transactionFrom, f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	var txs []model.Transaction
	query := transactionSelect + f.where() + ` ORDER BY t.occurred_at DESC, t.id DESC` + limitOffset(page.Size, page.Offset())
	if err := selectAll(q, &txs, query, f.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, total, nil
}

// TransactionsForPeriod returns every transaction in range, archived included, oldest first.
func TransactionsForPeriod(q DBTX, tenantID string, filters model.TransactionFilters) ([]model.Transaction, error) {
	filters.IncludeArchived = true
	f := transactionFilter(tenantID, filters)
	var txs []model.Transaction
	if err := selectAll(q, &txs, transactionSelect+f.where()+` ORDER BY t.occurred_at, t.id`, f.args...); err != nil {
		return nil, fmt.Errorf("failed to list transactions for period: %w", err)
	}
	return txs, nil
}

// MovementsByProduct sums quantities per product for one direction, largest first.
func MovementsByProduct(q DBTX, tenantID string, filters model.TransactionFilters, entry bool) ([]model.ProductMovement, error) {
	filters.IncludeArchived = true
	f := transactionFilter(tenantID, filters)
	f.add("tt.is_entry = ?", entry)
	var rows []model.ProductMovement
	query := `SELECT t.product_id, p.name AS product_name, SUM(t.quantity) AS quantity FROM ` + transactionFrom +
		f.where() + ` GROUP BY t.product_id, p.name ORDER BY quantity DESC, p.name`
	if err := selectAll(q, &rows, query, f.args...); err != nil {
		return nil, fmt.Errorf("failed to sum movements by product: %w", err)
	}
	return rows, nil
}

func GetTransaction(q DBTX, tenantID string, id int64) (*model.Transaction, error) {
	var t model.Transaction
	if err := get(q, &t, transactionSelect+` WHERE t.tenant_id = ? AND t.id = ?`, tenantID, id); err != nil {
		return nil, fmt.Errorf("failed to get transaction %d: %w", id, classify(err))
	}
	return &t, nil
}

func InsertTransactionInTx(q DBTX, t *model.Transaction) error {
	id, err := insertReturningID(q, `
		INSERT INTO transactions (tenant_id, type_id, user_name, product_id, occurred_at, quantity, notes, archived)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TenantID, t.TypeID, t.UserName, t.ProductID, t.OccurredAt, t.Quantity, t.Notes, t.Archived,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", classify(err))
	}
	t.ID = id
	return nil
}

func ArchiveTransaction(q DBTX, tenantID string, id int64) error {
	if err := execOne(q, `UPDATE transactions SET archived = ? WHERE tenant_id = ? AND id = ?`, true, tenantID, id); err != nil {
		return fmt.Errorf("failed to archive transaction %d: %w", id, classify(err))
	}
	return nil
}

package inout

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"atec/config"
	"atec/database"
	"atec/httperr"
	"atec/mappers"
	"atec/model"
	"atec/tenancy"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// TransactionInput is one stock movement request.
type TransactionInput struct {
	ProductID int64  `json:"productId"`
	TypeID    int64  `json:"typeId"`
	Quantity  int    `json:"quantity"`
	Lot       string `json:"lot"`
	AutoLot   bool   `json:"autoLot"`
	Notes     string `json:"notes"`
	Date      string `json:"date"`
}

type TransactionResult struct {
	Transaction *model.Transaction `json:"transaction"`
	Items       []model.Item       `json:"items"`
	Warning     string             `json:"warning,omitempty"`
}

// NewLot generates a lot code for entries registered without one.
func NewLot() string {
	return "LOTE-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// parseOccurredAt accepts an RFC 3339 timestamp or a plain date. Empty means now.
func parseOccurredAt(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC().Truncate(time.Second), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// CreateTransaction validates the movement and applies it in one database
// transaction. Entries create one available item per unit; exits consume the
// oldest available items across lots.
func CreateTransaction(db *sqlx.DB, p tenancy.Principal, in TransactionInput, now time.Time) (*TransactionResult, error) {
	tx, err := db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	t, lot, err := validate(tx, p, in, now)
	if err != nil {
		return nil, err
	}

	if err := database.InsertTransactionInTx(tx, t); err != nil {
		return nil, err
	}
	if t.IsEntry {
		if err := database.InsertItemsInTx(tx, p.TenantID, t.ProductID, t.ID, lot, t.Quantity, now); err != nil {
			return nil, err
		}
	} else {
		if _, err := database.AllocateItemsFIFOInTx(tx, p.TenantID, t.ProductID, t.ID, t.Quantity); err != nil {
			return nil, err
		}
	}

	stored, err := database.GetTransaction(tx, p.TenantID, t.ID)
	if err != nil {
		return nil, err
	}
	items, err := database.GetTransactionItems(tx, p.TenantID, t.ID)
	if err != nil {
		return nil, err
	}
	prod, err := database.GetProduct(tx, p.TenantID, t.ProductID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	result := &TransactionResult{Transaction: stored, Items: items}
	result.Warning = mappers.LowStockWarning(*prod)
	zap.S().Infof("transaction %d (%s) of %d unit(s) of product %d by %s", stored.ID, stored.TypeName, stored.Quantity, stored.ProductID, p.User)
	return result, nil
}

func validate(q database.DBTX, p tenancy.Principal, in TransactionInput, now time.Time) (*model.Transaction, *string, error) {
	v := httperr.NewValidationError()
	maxUnits := config.GetConfig().App.MaxUnitsPerTransaction

	prod, err := database.GetProduct(q, p.TenantID, in.ProductID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		v.Add("productId", "Produto não encontrado.")
	case err != nil:
		return nil, nil, err
	case !prod.Active:
		v.Add("productId", "O produto está inativo.")
	}

	tt, err := database.GetTransactionType(q, p.TenantID, in.TypeID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		v.Add("typeId", "Tipo de transação não encontrado.")
	case err != nil:
		return nil, nil, err
	}

	if in.Quantity <= 0 {
		v.Add("quantity", "A quantidade deve ser maior que zero.")
	} else if in.Quantity > maxUnits {
		v.Add("quantity", fmt.Sprintf("A quantidade máxima por transação é %d.", maxUnits))
	}

	occurredAt, err := parseOccurredAt(in.Date, now)
	if err != nil {
		v.Add("date", "Data inválida.")
	}

	var lot *string
	if tt != nil && tt.IsEntry {
		code := strings.TrimSpace(in.Lot)
		if code == "" && in.AutoLot {
			code = NewLot()
		}
		if code == "" {
			v.Add("lot", "Informe o lote para entradas.")
		}
		lot = &code
	}

	if err := v.OrNil(); err != nil {
		return nil, nil, err
	}

	if !tt.IsEntry {
		available, err := database.CountAvailableItems(q, p.TenantID, prod.ID)
		if err != nil {
			return nil, nil, err
		}
		if available < in.Quantity {
			return nil, nil, &database.InsufficientStockError{Available: available, Required: in.Quantity}
		}
	}

	return &model.Transaction{
		TenantID:   p.TenantID,
		TypeID:     tt.ID,
		TypeName:   tt.Name,
		IsEntry:    tt.IsEntry,
		UserName:   p.User,
		ProductID:  prod.ID,
		OccurredAt: occurredAt,
		Quantity:   in.Quantity,
		Notes:      strings.TrimSpace(in.Notes),
	}, lot, nil
}

package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"atec/database"
	"atec/httperr"
	"atec/parsers"
	"atec/tenancy"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ImportResult summarizes a contract import.
type ImportResult struct {
	Imported int                `json:"imported"`
	Errors   []parsers.RowError `json:"errors"`
}

// ImportClientsHandler loads contracts from an uploaded CSV ("file" form field).
// Each row is stored on its own so a bad row does not discard the others.
func ImportClientsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())

		file, _, err := r.FormFile("file")
		if err != nil {
			httperr.BadRequest(w, "Falha ao ler o arquivo CSV: "+err.Error())
			return
		}
		defer file.Close()

		decoded, err := parsers.Decode(file, r.URL.Query().Get("encoding"))
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		records, rowErrors, err := parsers.ParseContractCSV(decoded)
		if err != nil {
			httperr.BadRequest(w, "Falha ao interpretar o CSV: "+err.Error())
			return
		}
		if len(records) == 0 && len(rowErrors) == 0 {
			httperr.BadRequest(w, "O CSV não contém dados para importar.")
			return
		}

		result := ImportContracts(db, p.TenantID, records)
		result.Errors = append(rowErrors, result.Errors...)
		zap.S().Infof("contract import by %s: %d imported, %d rejected", p.User, result.Imported, len(result.Errors))
		httperr.WriteJSON(w, http.StatusOK, result)
	}
}

// ImportContracts validates and stores each record, collecting per-row errors.
func ImportContracts(q database.DBTX, tenantID string, records []parsers.ContractRecord) *ImportResult {
	result := &ImportResult{Errors: []parsers.RowError{}}
	for _, rec := range records {
		if err := importOne(q, tenantID, rec); err != nil {
			result.Errors = append(result.Errors, parsers.RowError{Line: rec.Line, Message: rowMessage(err)})
			continue
		}
		result.Imported++
	}
	return result
}

func importOne(q database.DBTX, tenantID string, rec parsers.ContractRecord) error {
	sys, err := database.GetSystemByName(q, tenantID, rec.System)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("sistema não encontrado: %q", rec.System)
		}
		return err
	}
	monthly, err := parseFee(rec.MonthlyFee)
	if err != nil {
		return fmt.Errorf("monthly_fee inválido: %q", rec.MonthlyFee)
	}
	annual, err := parseFee(rec.AnnualFee)
	if err != nil {
		return fmt.Errorf("annual_fee inválido: %q", rec.AnnualFee)
	}

	payload := Payload{
		Name:           rec.ClientName,
		Document:       rec.Document,
		SystemID:       sys.ID,
		BillingCycle:   rec.BillingCycle,
		MonthlyFee:     monthly,
		AnnualFee:      annual,
		StartDate:      rec.StartDate,
		ExpirationDate: rec.ExpirationDate,
	}
	c, err := payload.ToModel(q, tenantID)
	if err != nil {
		return err
	}
	return database.CreateClient(q, c)
}

// parseFee accepts "1234.56" and the pt-BR forms "1.234,56" and "R$ 99,90".
func parseFee(raw string) (decimal.NullDecimal, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "R$"))
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	if strings.Contains(raw, ",") {
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func rowMessage(err error) string {
	var validation *httperr.ValidationError
	if errors.As(err, &validation) {
		return validation.Error()
	}
	if errors.Is(err, database.ErrDuplicate) {
		return "registro duplicado"
	}
	return err.Error()
}

package contract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"atec/database"
	"atec/httperr"
	"atec/model"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	hundred       = decimal.NewFromInt(100)
	minPercentage = decimal.NewFromInt(-100)
)

// RenewalInput is one renewal event applied to a set of contracts.
type RenewalInput struct {
	ClientIDs  []int64         `json:"clientIds"`
	Percentage decimal.Decimal `json:"percentage"`
	Months     int             `json:"months"`
}

func (in RenewalInput) Validate() error {
	v := httperr.NewValidationError()
	if len(in.ClientIDs) == 0 {
		v.Add("clientIds", "Selecione ao menos um contrato.")
	}
	for _, id := range in.ClientIDs {
		if id <= 0 {
			v.Add("clientIds", "Identificador de contrato inválido: "+strconv.FormatInt(id, 10))
			break
		}
	}
	if in.Percentage.LessThanOrEqual(minPercentage) {
		v.Add("percentage", "O percentual deve ser maior que -100.")
	}
	if in.Months < 0 {
		v.Add("months", "O número de meses não pode ser negativo.")
	}
	if in.Months == 0 && in.Percentage.IsZero() && v.Fields["percentage"] == "" && v.Fields["months"] == "" {
		v.Add("", "Informe um percentual de reajuste ou um número de meses.")
	}
	return v.OrNil()
}

// AdjustFee applies the percentage to a populated fee, rounded to cents.
func AdjustFee(fee decimal.NullDecimal, percentage decimal.Decimal) decimal.NullDecimal {
	if !fee.Valid {
		return fee
	}
	factor := decimal.NewFromInt(1).Add(percentage.Div(hundred))
	return decimal.NewNullDecimal(fee.Decimal.Mul(factor).Round(2))
}

// ApplyRenewal updates c in place and returns the audit row describing the change.
// A contract without expiration is extended from the renewal date.
func ApplyRenewal(c *model.Client, percentage decimal.Decimal, months int, user string, now time.Time) model.RenewalHistory {
	h := model.RenewalHistory{
		TenantID:      c.TenantID,
		ClientID:      c.ID,
		ClientName:    c.Name,
		OldMonthlyFee: c.MonthlyFee,
		OldAnnualFee:  c.AnnualFee,
		OldExpiration: c.ExpirationDate,
		Percentage:    percentage,
		Months:        months,
		RenewedBy:     user,
		RenewedAt:     now,
	}

	base := truncateDay(now)
	if c.ExpirationDate != nil {
		base = *c.ExpirationDate
	}
	newExpiration := AddMonths(base, months)

	c.MonthlyFee = AdjustFee(c.MonthlyFee, percentage)
	c.AnnualFee = AdjustFee(c.AnnualFee, percentage)
	c.ExpirationDate = &newExpiration

	h.NewMonthlyFee = c.MonthlyFee
	h.NewAnnualFee = c.AnnualFee
	h.NewExpiration = newExpiration
	return h
}

type RenewalFailure struct {
	ClientID int64  `json:"clientId"`
	Error    string `json:"error"`
}

type RenewalResult struct {
	Renewed []model.RenewalHistory `json:"renewed"`
	Missing []int64                `json:"missing"`
	Failed  []RenewalFailure       `json:"failed"`
	Warning string                 `json:"warning,omitempty"`
}

// RenewContracts renews each contract in its own database transaction. Unknown
// ids and per-contract failures are collected and do not stop the batch.
// Running it twice compounds the adjustment.
func RenewContracts(db *sqlx.DB, tenantID, user string, in RenewalInput, now time.Time) (*RenewalResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	result := &RenewalResult{
		Renewed: []model.RenewalHistory{},
		Missing: []int64{},
		Failed:  []RenewalFailure{},
	}
	seen := make(map[int64]bool, len(in.ClientIDs))
	for _, id := range in.ClientIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		h, err := renewOne(db, tenantID, id, user, in, now)
		switch {
		case errors.Is(err, database.ErrNotFound):
			result.Missing = append(result.Missing, id)
		case err != nil:
			zap.S().Warnf("renewal of client %d failed: %v", id, err)
			result.Failed = append(result.Failed, RenewalFailure{ClientID: id, Error: err.Error()})
		default:
			result.Renewed = append(result.Renewed, *h)
		}
	}

	if len(result.Missing) > 0 {
		ids := make([]string, len(result.Missing))
		for i, id := range result.Missing {
			ids[i] = strconv.FormatInt(id, 10)
		}
		result.Warning = fmt.Sprintf("Contratos não encontrados: %s", strings.Join(ids, ", "))
	}
	return result, nil
}

func renewOne(db *sqlx.DB, tenantID string, id int64, user string, in RenewalInput, now time.Time) (*model.RenewalHistory, error) {
	tx, err := db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	c, err := database.GetClient(tx, tenantID, id)
	if err != nil {
		return nil, err
	}

	h := ApplyRenewal(c, in.Percentage, in.Months, user, now)
	if err := database.UpdateClientRenewalInTx(tx, c); err != nil {
		return nil, err
	}
	if err := database.InsertRenewalInTx(tx, &h); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit renewal of client %d: %w", id, err)
	}
	return &h, nil
}

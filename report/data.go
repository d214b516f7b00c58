package report

import (
	"time"

	"atec/database"
	"atec/mappers"
	"atec/model"
	"atec/order"
	"atec/render"

	"github.com/shopspring/decimal"
)

var contractStatusLabels = map[string]string{
	mappers.ContractExpired:  "Vencido",
	mappers.ContractExpiring: "A vencer",
	mappers.ContractCurrent:  "Em dia",
	mappers.ContractOpenEnd:  "Sem vencimento",
}

var orderStatusLabels = map[string]string{
	model.OrderOpen:      "Em aberto",
	model.OrderPaid:      "Pago",
	model.OrderCancelled: "Cancelado",
}

type ContractRow struct {
	mappers.ClientView
	StatusLabel string
}

type ContractReport struct {
	Header       render.Header
	Rows         []ContractRow
	MonthlyTotal decimal.Decimal
	AnnualTotal  decimal.Decimal
}

// BuildContractReport lists every matching contract with its revenue totals.
func BuildContractReport(q database.DBTX, tenantID string, filters model.ClientFilters, now time.Time, expiringSoonDays int) (*ContractReport, error) {
	clients, _, err := database.ListClients(q, tenantID, filters, model.Page{})
	if err != nil {
		return nil, err
	}
	rep := &ContractReport{Rows: []ContractRow{}, MonthlyTotal: decimal.Zero, AnnualTotal: decimal.Zero}
	for _, v := range mappers.ToClientViews(clients, now, expiringSoonDays) {
		rep.Rows = append(rep.Rows, ContractRow{ClientView: v, StatusLabel: contractStatusLabels[v.Status]})
		if v.MonthlyFee.Valid {
			rep.MonthlyTotal = rep.MonthlyTotal.Add(v.MonthlyFee.Decimal)
		}
		if v.AnnualFee.Valid {
			rep.AnnualTotal = rep.AnnualTotal.Add(v.AnnualFee.Decimal)
		}
	}
	return rep, nil
}

type RenewalReport struct {
	Header render.Header
	Rows   []model.RenewalHistory
}

func BuildRenewalReport(q database.DBTX, tenantID string, filters model.RenewalFilters) (*RenewalReport, error) {
	rows, _, err := database.ListRenewals(q, tenantID, filters, model.Page{})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.RenewalHistory{}
	}
	return &RenewalReport{Rows: rows}, nil
}

type TransactionReport struct {
	Header   render.Header
	Rows     []model.Transaction
	TotalIn  int
	TotalOut int
	Balance  int
	Entries  []model.ProductMovement
	Exits    []model.ProductMovement
}

// BuildTransactionReport covers every transaction in the period, archived included.
func BuildTransactionReport(q database.DBTX, tenantID string, from, to time.Time) (*TransactionReport, error) {
	filters := model.TransactionFilters{From: &from, To: &to, IncludeArchived: true}
	rows, err := database.TransactionsForPeriod(q, tenantID, filters)
	if err != nil {
		return nil, err
	}
	entries, err := database.MovementsByProduct(q, tenantID, filters, true)
	if err != nil {
		return nil, err
	}
	exits, err := database.MovementsByProduct(q, tenantID, filters, false)
	if err != nil {
		return nil, err
	}

	rep := &TransactionReport{Rows: rows, Entries: entries, Exits: exits}
	for _, t := range rows {
		if t.IsEntry {
			rep.TotalIn += t.Quantity
		} else {
			rep.TotalOut += t.Quantity
		}
	}
	rep.Balance = rep.TotalIn - rep.TotalOut
	return rep, nil
}

type OrderRow struct {
	mappers.OrderClientView
	StatusLabel string
}

type OrderReport struct {
	Header  render.Header
	Rows    []OrderRow
	Summary model.OrderSummary
}

func BuildOrderReport(q database.DBTX, tenantID string, filters model.OrderFilters) (*OrderReport, error) {
	orders, err := database.OrdersForPeriod(q, tenantID, filters)
	if err != nil {
		return nil, err
	}
	rep := &OrderReport{Rows: []OrderRow{}, Summary: order.Summarize(orders, filters.From, filters.To)}
	for _, v := range mappers.ToOrderClientViews(orders) {
		rep.Rows = append(rep.Rows, OrderRow{OrderClientView: v, StatusLabel: orderStatusLabels[v.Status]})
	}
	return rep, nil
}

package report

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"atec/client"
	"atec/config"
	"atec/contract"
	"atec/httperr"
	"atec/order"
	"atec/params"
	"atec/render"
	"atec/tenancy"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

func header(r *http.Request, title, period string) render.Header {
	p := tenancy.MustFromContext(r.Context())
	return render.Header{
		Company:     config.GetConfig().Report.CompanyName,
		Title:       title,
		Period:      period,
		GeneratedAt: time.Now(),
		GeneratedBy: p.User,
	}
}

// write renders the named template and sends it as PDF, or as HTML when format=html.
func write(w http.ResponseWriter, r *http.Request, printer render.PDFPrinter, name string, landscape bool, data interface{}) {
	html, err := render.HTML(name, data)
	if err != nil {
		httperr.Write(w, err)
		return
	}
	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(html)
		return
	}

	pdf, err := printer.PrintPDF(r.Context(), html, landscape)
	if err != nil {
		zap.S().Errorf("failed to print %s report: %v", name, err)
		httperr.Write(w, fmt.Errorf("failed to generate PDF: %w", err))
		return
	}
	filename := fmt.Sprintf("relatorio_%s_%s.pdf", name, time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	w.Write(pdf)
}

// ContractsReportHandler accepts the same filters as the contract list.
func ContractsReportHandler(db *sqlx.DB, printer render.PDFPrinter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		filters, err := client.FiltersFromRequest(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		rep, err := BuildContractReport(db, p.TenantID, filters, time.Now(), config.GetConfig().App.ExpiringSoonDays)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		period := "Posição atual"
		if filters.ExpiringBefore != nil {
			period = "Vencimento até " + render.Date(*filters.ExpiringBefore)
		}
		rep.Header = header(r, "Relatório de contratos", period)
		write(w, r, printer, "contracts", true, rep)
	}
}

func RenewalsReportHandler(db *sqlx.DB, printer render.PDFPrinter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		filters, err := contract.FiltersFromRequest(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		rep, err := BuildRenewalReport(db, p.TenantID, filters)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		from, _ := params.Date(r, "from")
		to, _ := params.Date(r, "to")
		rep.Header = header(r, "Relatório de renovações", render.Period(from, to))
		write(w, r, printer, "renewals", true, rep)
	}
}

// TransactionsReportHandler defaults to the current month when from or to is missing.
func TransactionsReportHandler(db *sqlx.DB, printer render.PDFPrinter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		from, err := params.Date(r, "from")
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		to, err := params.Date(r, "to")
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		start, end := params.MonthRange(time.Now())
		if from == nil {
			from = &start
		}
		if to == nil {
			to = &end
		}
		if to.Before(*from) {
			httperr.Write(w, httperr.Invalid("to", "A data final não pode ser anterior à inicial."))
			return
		}

		rep, err := BuildTransactionReport(db, p.TenantID, *from, *params.EndOfDay(to))
		if err != nil {
			httperr.Write(w, err)
			return
		}
		rep.Header = header(r, "Relatório de transações", render.Period(from, to))
		write(w, r, printer, "transactions", false, rep)
	}
}

func OrdersReportHandler(db *sqlx.DB, printer render.PDFPrinter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		filters, err := order.FiltersFromRequest(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		rep, err := BuildOrderReport(db, p.TenantID, filters)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		from, _ := params.Date(r, "from")
		to, _ := params.Date(r, "to")
		rep.Header = header(r, "Relatório de pedidos", render.Period(from, to))
		write(w, r, printer, "orders", true, rep)
	}
}

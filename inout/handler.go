package inout

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"atec/database"
	"atec/httperr"
	"atec/model"
	"atec/params"
	"atec/parsers"
	"atec/tenancy"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// TransactionDetail is a transaction with the items it created or consumed.
type TransactionDetail struct {
	model.Transaction
	Items []model.Item `json:"items"`
}

// FiltersFromRequest reads productId, typeId, archived, from and to.
func FiltersFromRequest(r *http.Request) (model.TransactionFilters, error) {
	var f model.TransactionFilters
	var err error
	if f.ProductID, err = params.Int64(r, "productId"); err != nil {
		return f, err
	}
	if f.TypeID, err = params.Int64(r, "typeId"); err != nil {
		return f, err
	}
	archived, err := params.Bool(r, "archived")
	if err != nil {
		return f, err
	}
	f.IncludeArchived = archived != nil && *archived
	if f.From, err = params.Date(r, "from"); err != nil {
		return f, err
	}
	to, err := params.Date(r, "to")
	if err != nil {
		return f, err
	}
	f.To = params.EndOfDay(to)
	return f, nil
}

func CreateTransactionHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		var in TransactionInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			httperr.BadRequest(w, "Corpo da requisição inválido: "+err.Error())
			return
		}
		result, err := CreateTransaction(db, p, in, database.Now())
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusCreated, result)
	}
}

func ListTransactionsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		filters, err := FiltersFromRequest(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		page := params.Page(r)
		txs, total, err := database.ListTransactions(db, p.TenantID, filters, page)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, model.NewPageResult(txs, page, total))
	}
}

func GetTransactionHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		id, err := params.ID(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		t, err := database.GetTransaction(db, p.TenantID, id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		items, err := database.GetTransactionItems(db, p.TenantID, id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		if items == nil {
			items = []model.Item{}
		}
		httperr.WriteJSON(w, http.StatusOK, TransactionDetail{Transaction: *t, Items: items})
	}
}

// ArchiveTransactionHandler hides a transaction from the default list. Stock is unchanged.
func ArchiveTransactionHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		id, err := params.ID(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		if err := database.ArchiveTransaction(db, p.TenantID, id); err != nil {
			httperr.Write(w, err)
			return
		}
		t, err := database.GetTransaction(db, p.TenantID, id)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		zap.S().Infof("transaction %d archived by %s", id, p.User)
		httperr.WriteJSON(w, http.StatusOK, t)
	}
}

// ExportTransactionsHandler downloads the filtered list as CSV, in
// Windows-1252 by default or UTF-8 with BOM when encoding=utf-8.
func ExportTransactionsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tenancy.MustFromContext(r.Context())
		filters, err := FiltersFromRequest(r)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		encoding := r.URL.Query().Get("encoding")
		if encoding == "" {
			encoding = parsers.EncodingWindows1252
		}

		txs, _, err := database.ListTransactions(db, p.TenantID, filters, model.Page{})
		if err != nil {
			httperr.Write(w, err)
			return
		}

		var buf bytes.Buffer
		out, err := parsers.Encode(&buf, encoding)
		if err != nil {
			httperr.BadRequest(w, err.Error())
			return
		}
		if err := WriteTransactionsCSV(out, txs); err != nil {
			httperr.Write(w, err)
			return
		}

		filename := fmt.Sprintf("transacoes_%s.csv", time.Now().Format("20060102"))
		w.Header().Set("Content-Type", "text/csv; charset="+encoding)
		w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
		w.Write(buf.Bytes())
	}
}

// WriteTransactionsCSV writes a header row and one row per transaction.
func WriteTransactionsCSV(out io.Writer, txs []model.Transaction) error {
	writer := csv.NewWriter(out)
	writer.Comma = ';'
	header := []string{"ID", "Data", "Tipo", "Produto", "Quantidade", "Usuário", "Observações", "Arquivada"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, t := range txs {
		archived := "Não"
		if t.Archived {
			archived = "Sim"
		}
		row := []string{
			strconv.FormatInt(t.ID, 10),
			t.OccurredAt.Format("02/01/2006 15:04"),
			t.TypeName,
			t.ProductName,
			strconv.Itoa(t.Quantity),
			t.UserName,
			t.Notes,
			archived,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for transaction %d: %w", t.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

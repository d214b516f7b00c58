package parsers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var contractHeaders = []string{
	"client_name", "document", "system", "billing_cycle",
	"monthly_fee", "annual_fee", "start_date", "expiration_date",
}

// ContractRecord is one raw row of a contract import file.
type ContractRecord struct {
	Line           int
	ClientName     string
	Document       string
	System         string
	BillingCycle   string
	MonthlyFee     string
	AnnualFee      string
	StartDate      string
	ExpirationDate string
}

// RowError reports a rejected line of an import file.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ParseContractCSV reads a decoded contract import file. Unreadable or
// blank-named rows are returned as row errors; the header must be complete.
func ParseContractCSV(r io.Reader) ([]ContractRecord, []RowError, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("o arquivo CSV está vazio")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("falha ao ler o cabeçalho do CSV: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	colIndex, err := getColIndex(header, contractHeaders)
	if err != nil {
		return nil, nil, err
	}

	var records []ContractRecord
	var rowErrors []RowError
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			line := 0
			if errors.As(err, &parseErr) {
				line = parseErr.StartLine
			}
			rowErrors = append(rowErrors, RowError{Line: line, Message: err.Error()})
			continue
		}
		line, _ := reader.FieldPos(0)

		get := func(key string) string {
			if idx, ok := colIndex[key]; ok && idx < len(rec) {
				return strings.TrimSpace(rec[idx])
			}
			return ""
		}
		if isBlank(rec) {
			continue
		}
		name := get("client_name")
		if name == "" {
			rowErrors = append(rowErrors, RowError{Line: line, Message: "client_name vazio"})
			continue
		}

		records = append(records, ContractRecord{
			Line:           line,
			ClientName:     name,
			Document:       get("document"),
			System:         get("system"),
			BillingCycle:   strings.ToLower(get("billing_cycle")),
			MonthlyFee:     get("monthly_fee"),
			AnnualFee:      get("annual_fee"),
			StartDate:      get("start_date"),
			ExpirationDate: get("expiration_date"),
		})
	}
	return records, rowErrors, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

package render

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

const dateLayout = "02/01/2006"

// Money formats an amount as Brazilian currency, e.g. R$ 1.234,56.
func Money(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return "R$ " + printer.Sprint(number.Decimal(f, number.Scale(2)))
}

// NullMoney renders a missing amount as a dash.
func NullMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return Money(d.Decimal)
}

// Percent formats a percentage with two decimals, e.g. 7,50%.
func Percent(d decimal.Decimal) string {
	f, _ := d.Float64()
	return printer.Sprint(number.Decimal(f, number.Scale(2))) + "%"
}

// Int formats a count with thousands separators.
func Int(n int) string {
	return printer.Sprint(number.Decimal(n))
}

func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

func DatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return Date(*t)
}

func DateTime(t time.Time) string {
	return t.Format(dateLayout + " 15:04")
}

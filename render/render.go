package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"money":     Money,
	"nullMoney": NullMoney,
	"percent":   Percent,
	"int":       Int,
	"date":      Date,
	"datePtr":   DatePtr,
	"dateTime":  DateTime,
}

var templates = template.Must(template.New("reports").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))

// Header is the common heading of every report.
type Header struct {
	Company     string
	Title       string
	Period      string
	GeneratedAt time.Time
	GeneratedBy string
}

// Period describes a date range for report headings.
func Period(from, to *time.Time) string {
	switch {
	case from != nil && to != nil:
		return fmt.Sprintf("%s a %s", Date(*from), Date(*to))
	case from != nil:
		return "A partir de " + Date(*from)
	case to != nil:
		return "Até " + Date(*to)
	default:
		return "Todo o período"
	}
}

// HTML executes the named report template ("contracts", "renewals",
// "transactions" or "orders").
func HTML(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name+".html", data); err != nil {
		return nil, fmt.Errorf("failed to render %s report: %w", name, err)
	}
	return buf.Bytes(), nil
}

package params

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"atec/config"
	"atec/model"
)

const DateLayout = "2006-01-02"

// ID reads the {id} path value.
func ID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// Page reads page and pageSize. The size defaults to the configured page
// size and is capped at 200.
func Page(r *http.Request) model.Page {
	q := r.URL.Query()
	p := model.Page{Number: 1, Size: config.GetConfig().App.PageSize}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		p.Number = n
	}
	if n, err := strconv.Atoi(q.Get("pageSize")); err == nil && n > 0 {
		p.Size = n
	}
	if p.Size > 200 {
		p.Size = 200
	}
	return p
}

// Int64 returns 0 when the parameter is absent.
func Int64(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}

// Bool returns nil when the parameter is absent.
func Bool(r *http.Request, name string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return &b, nil
}

// ParseDate parses YYYY-MM-DD as a UTC date. Empty input yields nil.
func ParseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", raw)
	}
	return &t, nil
}

// Date reads a YYYY-MM-DD query parameter.
func Date(r *http.Request, name string) (*time.Time, error) {
	t, err := ParseDate(r.URL.Query().Get(name))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

// EndOfDay moves a date to its last nanosecond so ranges include the whole day.
func EndOfDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	end := t.Add(24*time.Hour - time.Nanosecond)
	return &end
}

// MonthRange returns the first and last day of the month containing now.
func MonthRange(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}

package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// DBTX is satisfied by both *sqlx.DB and *sqlx.Tx.
type DBTX interface {
	Get(dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
	Query(query string, args ...interface{}) (*sql.Rows, error)
	Exec(query string, args ...interface{}) (sql.Result, error)
	Preparex(query string) (*sqlx.Stmt, error)
	Rebind(query string) string
	DriverName() string
}

// Open connects with driver "sqlite3" or "pgx".
func Open(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case "sqlite3", "pgx":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	return db, nil
}

// Now is the timestamp written to created/updated columns.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func get(q DBTX, dest interface{}, query string, args ...interface{}) error {
	return q.Get(dest, q.Rebind(query), args...)
}

func selectAll(q DBTX, dest interface{}, query string, args ...interface{}) error {
	return q.Select(dest, q.Rebind(query), args...)
}

func exec(q DBTX, query string, args ...interface{}) (sql.Result, error) {
	return q.Exec(q.Rebind(query), args...)
}

func insertReturningID(q DBTX, query string, args ...interface{}) (int64, error) {
	var id int64
	if err := q.Get(&id, q.Rebind(query+" RETURNING id"), args...); err != nil {
		return 0, err
	}
	return id, nil
}

// execOne runs a statement that must touch exactly one row.
func execOne(q DBTX, query string, args ...interface{}) error {
	res, err := exec(q, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// filter accumulates WHERE conditions and their arguments.
type filter struct {
	conds []string
	args  []interface{}
}

func newFilter(tenantCol, tenantID string) *filter {
	return &filter{conds: []string{tenantCol + " = ?"}, args: []interface{}{tenantID}}
}

func (f *filter) add(cond string, args ...interface{}) {
	f.conds = append(f.conds, cond)
	f.args = append(f.args, args...)
}

// search adds a case-insensitive substring match over the given columns.
func (f *filter) search(term string, cols ...string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}
	like := "%" + strings.ToLower(term) + "%"
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = "LOWER(" + c + ") LIKE ?"
		f.args = append(f.args, like)
	}
	f.conds = append(f.conds, "("+strings.Join(parts, " OR ")+")")
}

func (f *filter) where() string {
	return " WHERE " + strings.Join(f.conds, " AND ")
}

func count(q DBTX, from string, f *filter) (int, error) {
	var n int
	if err := get(q, &n, "SELECT COUNT(*) FROM "+from+f.where(), f.args...); err != nil {
		return 0, err
	}
	return n, nil
}

func limitOffset(size, offset int) string {
	if size <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", size, offset)
}

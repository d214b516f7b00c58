package loader

import (
	"embed"
	"fmt"

	"atec/database"
	"atec/model"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed schema_sqlite.sql schema_postgres.sql
var schemaFS embed.FS

// DefaultTransactionTypes are created for every new tenant.
var DefaultTransactionTypes = []model.TransactionType{
	{Name: "Entrada", Description: "Entrada de estoque", IsEntry: true},
	{Name: "Saída", Description: "Saída de estoque", IsEntry: false},
}

// InitDatabase applies the schema for the connection's driver.
func InitDatabase(db *sqlx.DB) error {
	zap.S().Info("Applying database schema...")
	if err := applySchema(db); err != nil {
		return err
	}
	zap.S().Info("Schema applied successfully.")
	return nil
}

func schemaFile(driver string) (string, error) {
	switch driver {
	case "sqlite3":
		return "schema_sqlite.sql", nil
	case "pgx":
		return "schema_postgres.sql", nil
	default:
		return "", fmt.Errorf("no schema for driver %q", driver)
	}
}

func applySchema(db *sqlx.DB) error {
	name, err := schemaFile(db.DriverName())
	if err != nil {
		return err
	}
	schemaBytes, err := schemaFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", name, err)
	}
	if _, err := db.Exec(string(schemaBytes)); err != nil {
		return fmt.Errorf("failed to execute %s: %w", name, err)
	}
	return nil
}

// CreateTenant registers a tenant and seeds its defaults in one transaction.
func CreateTenant(db *sqlx.DB, id, name string) (err error) {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	if err = database.CreateTenant(tx, id, name); err != nil {
		return err
	}
	_, err = SeedDefaults(tx, id)
	return err
}

// SeedDefaults creates the default transaction types that are missing.
// It returns how many were created.
func SeedDefaults(q database.DBTX, tenantID string) (int, error) {
	existing, err := database.GetAllTransactionTypes(q, tenantID)
	if err != nil {
		return 0, err
	}
	have := make(map[string]bool, len(existing))
	for _, t := range existing {
		have[t.Name] = true
	}

	created := 0
	for _, def := range DefaultTransactionTypes {
		if have[def.Name] {
			continue
		}
		t := def
		t.TenantID = tenantID
		if err := database.CreateTransactionType(q, &t); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

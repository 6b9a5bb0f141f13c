package database

import (
	"database/sql"
	"fmt"
	"os"
)

// Migrate applies docs/schema.sql. Every statement is IF NOT EXISTS so
// reapplying on startup is safe.
func Migrate(db *sql.DB) error {
	b, err := os.ReadFile("docs/schema.sql")
	if err != nil {
		return fmt.Errorf("read docs/schema.sql: %w", err)
	}

	if _, err := db.Exec(string(b)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// MigrateSQL applies an explicit schema string; tests use it with an
// in-memory database where the docs path isn't available.
func MigrateSQL(db *sql.DB, schema string) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

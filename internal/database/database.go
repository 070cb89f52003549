package database

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Migrate applies the bundled schema for the driver behind db. Statements
// are idempotent so it runs on every start.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	name := db.DriverName()
	script, err := schemaFS.ReadFile("schema/" + name + ".sql")
	if err != nil {
		return fmt.Errorf("no schema for driver %q: %w", name, err)
	}

	for _, stmt := range strings.Split(string(script), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(stmt string) string {
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return stmt[:i]
	}
	return stmt
}

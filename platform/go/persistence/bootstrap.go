package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	sqlassets "github.com/ribeiromendes5014-design/netfliz/database"
)

// BootstrapSchema applies the embedded catalog DDL in a single transaction,
// in dependency order (tenants, catalog, progress). SQL is embedded at build
// time so binaries stay self-contained. The helper is idempotent and intended
// for CLI bootstrap and tests.
func BootstrapSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("bootstrap schema: pool is required")
	}

	var statements []string
	for _, asset := range sqlassets.All() {
		statements = append(statements, splitStatements(asset)...)
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply ddl: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// splitStatements breaks an SQL asset into individual statements, dropping
// empty fragments so Exec never sees a blank command.
func splitStatements(sql string) []string {
	raw := strings.Split(sql, ";")
	statements := make([]string, 0, len(raw))
	for _, fragment := range raw {
		stmt := strings.TrimSpace(fragment)
		if stmt == "" {
			continue
		}
		statements = append(statements, stmt)
	}
	return statements
}

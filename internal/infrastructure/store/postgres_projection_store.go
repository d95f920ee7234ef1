package store

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresProjectionStore implements ProjectionStore on the read_stock_levels and
// read_ledger_activity tables.
type PostgresProjectionStore struct {
	db *sql.DB
}

func NewPostgresProjectionStore(db *sql.DB) *PostgresProjectionStore {
	return &PostgresProjectionStore{db: db}
}

// EnsureSchema creates the read tables if they are missing.
func (ps *PostgresProjectionStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS read_stock_levels (
			code       TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			qty        INTEGER NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS read_ledger_activity (
			id         TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			item_code  TEXT NOT NULL DEFAULT '',
			item       TEXT NOT NULL,
			type       TEXT NOT NULL DEFAULT '',
			qty        INTEGER NOT NULL,
			username   TEXT NOT NULL,
			event      TEXT NOT NULL DEFAULT '',
			at         TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := ps.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create read tables: %w", err)
		}
	}
	return nil
}

// UpsertStockLevel ignores levels older than the stored one so out-of-order
// redelivery cannot roll a quantity back.
func (ps *PostgresProjectionStore) UpsertStockLevel(ctx context.Context, level StockLevel) error {
	_, err := ps.db.ExecContext(ctx, `
		INSERT INTO read_stock_levels (code, name, qty, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			qty = EXCLUDED.qty,
			updated_at = EXCLUDED.updated_at
		WHERE read_stock_levels.updated_at <= EXCLUDED.updated_at
	`, level.Code, level.Name, level.Qty, level.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert stock level %s: %w", level.Code, err)
	}
	return nil
}

func (ps *PostgresProjectionStore) AppendActivity(ctx context.Context, a Activity) error {
	_, err := ps.db.ExecContext(ctx, `
		INSERT INTO read_ledger_activity (id, event_type, item_code, item, type, qty, username, event, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`, a.ID, a.EventType, a.ItemCode, a.Item, string(a.Type), a.Qty, a.User, a.Event, a.At)
	if err != nil {
		return fmt.Errorf("insert activity %s: %w", a.ID, err)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DefaultDocumentID is the row/item key the database-backed stores save under.
const DefaultDocumentID = "ledger"

// PostgresStore keeps the ledger document as a single row. The column is json, not
// jsonb, because jsonb reorders object keys and inventory order matters.
type PostgresStore struct {
	db *sql.DB
	id string
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, id: DefaultDocumentID}
}

// EnsureSchema creates the ledger_documents table if it is missing.
func (ps *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS ledger_documents (
			id         TEXT PRIMARY KEY,
			document   JSON NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
	)
	if err != nil {
		return fmt.Errorf("create ledger_documents: %w", err)
	}
	return nil
}

func (ps *PostgresStore) Load(ctx context.Context) (*Document, error) {
	var data []byte
	err := ps.db.QueryRowContext(ctx,
		"SELECT document FROM ledger_documents WHERE id = $1",
		ps.id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Bootstrap(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("select ledger document: %w", err)
	}

	return Decode(data)
}

func (ps *PostgresStore) Save(ctx context.Context, doc *Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	_, err = ps.db.ExecContext(ctx,
		`INSERT INTO ledger_documents (id, document, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`,
		ps.id,
		string(data),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("upsert ledger document: %w", err)
	}
	return nil
}

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists orders in a single sqlite database. Suited to
// deployments where a directory of JSON files is awkward (containers with
// one mounted volume, multi-process reads).
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS orders (
	order_id     TEXT PRIMARY KEY,
	order_type   TEXT NOT NULL,
	confirmed_at TEXT NOT NULL,
	summary      TEXT NOT NULL
);
`

// NewSQLiteStore opens (and initializes) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open orders db %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize orders schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save upserts the record; a change request overwrites the row for its id.
func (s *SQLiteStore) Save(ctx context.Context, record *Record) error {
	if record.OrderID == "" {
		return fmt.Errorf("order record has no id")
	}
	summaryJSON, err := json.Marshal(record.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal order %s summary: %w", record.OrderID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (order_id, order_type, confirmed_at, summary)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(order_id) DO UPDATE SET
			order_type = excluded.order_type,
			confirmed_at = excluded.confirmed_at,
			summary = excluded.summary`,
		record.OrderID, record.OrderType, record.ConfirmedAt, string(summaryJSON))
	if err != nil {
		return fmt.Errorf("failed to save order %s: %w", record.OrderID, err)
	}
	return nil
}

// Exists reports whether the order id has a row.
func (s *SQLiteStore) Exists(ctx context.Context, orderID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE order_id = ?`, orderID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check order %s: %w", orderID, err)
	}
	return true, nil
}

// Get loads and decodes the stored record.
func (s *SQLiteStore) Get(ctx context.Context, orderID string) (*Record, error) {
	record := Record{OrderID: orderID}
	var summaryJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT order_type, confirmed_at, summary FROM orders WHERE order_id = ?`, orderID).
		Scan(&record.OrderType, &record.ConfirmedAt, &summaryJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to read order %s: %w", orderID, err)
	}
	if err := json.Unmarshal([]byte(summaryJSON), &record.Summary); err != nil {
		return nil, fmt.Errorf("failed to parse order %s summary: %w", orderID, err)
	}
	return &record, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Ensure SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/raine/home-inventory/internal/inventory"
	_ "modernc.org/sqlite"
)

// StoredRow is one persisted inventory row with its insertion metadata.
type StoredRow struct {
	ID        int64
	Item      string
	Brand     string
	Quantity  int
	Price     float64
	Timestamp string
	Desc      string
	URI       string
	CreatedAt time.Time
}

// SQLiteStore is the local tabular sink plus the extraction cache. Unknown
// prices are stored as 0; consumers of the table cannot tell a zero-cost item
// from an unresolved price.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (or creates) the store at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	rowsQuery := `
	CREATE TABLE IF NOT EXISTS inventory_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item TEXT NOT NULL,
		brand TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL,
		price REAL NOT NULL,
		timestamp TEXT NOT NULL,
		description TEXT NOT NULL,
		uri TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(rowsQuery); err != nil {
		return fmt.Errorf("failed to create inventory_rows table: %w", err)
	}

	cacheQuery := `
	CREATE TABLE IF NOT EXISTS extraction_cache (
		hash TEXT PRIMARY KEY,
		raw TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(cacheQuery); err != nil {
		return fmt.Errorf("failed to create extraction_cache table: %w", err)
	}

	return nil
}

// Append implements inventory.TabularSink. The whole table goes into one
// transaction with the fixed column order [item, brand, quantity, price,
// timestamp, description, uri].
func (s *SQLiteStore) Append(ctx context.Context, table inventory.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &inventory.SinkError{Cause: fmt.Errorf("failed to begin transaction: %w", err)}
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO inventory_rows (item, brand, quantity, price, timestamp, description, uri)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return &inventory.SinkError{Cause: fmt.Errorf("failed to prepare insert: %w", err)}
	}
	defer stmt.Close()

	for _, row := range table {
		_, err := stmt.ExecContext(ctx, row.Item, row.Brand, row.Quantity, row.PriceOrZero(), row.Timestamp, row.Description, row.URI)
		if err != nil {
			return &inventory.SinkError{Cause: fmt.Errorf("failed to insert row: %w", err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &inventory.SinkError{Cause: fmt.Errorf("failed to commit: %w", err)}
	}

	return nil
}

// RecentRows returns the most recently appended rows, newest first.
func (s *SQLiteStore) RecentRows(limit int) ([]StoredRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, item, brand, quantity, price, timestamp, description, uri, created_at
		FROM inventory_rows ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	var result []StoredRow
	for rows.Next() {
		var r StoredRow
		if err := rows.Scan(&r.ID, &r.Item, &r.Brand, &r.Quantity, &r.Price, &r.Timestamp, &r.Desc, &r.URI, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, r)
	}

	return result, rows.Err()
}

// GetExtraction returns a cached extraction response, or "" when absent.
func (s *SQLiteStore) GetExtraction(hash string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRow("SELECT raw FROM extraction_cache WHERE hash = ?", hash).Scan(&raw)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query extraction cache: %w", err)
	}
	return raw, nil
}

// SetExtraction stores an extraction response, replacing any existing entry.
func (s *SQLiteStore) SetExtraction(hash, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO extraction_cache (hash, raw) VALUES (?, ?)
		ON CONFLICT(hash) DO UPDATE SET raw = excluded.raw, created_at = CURRENT_TIMESTAMP
	`, hash, raw)
	if err != nil {
		return fmt.Errorf("failed to upsert extraction cache: %w", err)
	}
	return nil
}

// PruneExtractionCache removes cache entries older than the given duration.
func (s *SQLiteStore) PruneExtractionCache(olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	result, err := s.db.Exec("DELETE FROM extraction_cache WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune extraction cache: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

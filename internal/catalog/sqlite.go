package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/tracefirst/digilink/internal/product"
)

// SQLite is a Catalog backed by a SQLite database. Records are stored as
// JSON documents keyed by GTIN.
type SQLite struct {
	db *sql.DB
}

var _ Catalog = (*SQLite)(nil)

// OpenSQLite opens (creating if necessary) a SQLite-backed catalog.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	c := &SQLite{db: db}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize catalog schema: %w", err)
	}
	return c, nil
}

func (c *SQLite) initSchema() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS products (
		gtin TEXT PRIMARY KEY,
		document TEXT NOT NULL
	)`)
	return err
}

// Seed upserts the given records. Used at startup to load the demo data.
func (c *SQLite) Seed(ctx context.Context, products []*product.ProductData) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range products {
		if err := p.Validate(); err != nil {
			return err
		}
		doc, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal product %s: %w", p.GTIN, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO products (gtin, document) VALUES (?, ?)
			 ON CONFLICT(gtin) DO UPDATE SET document = excluded.document`,
			p.GTIN, string(doc)); err != nil {
			return fmt.Errorf("seed product %s: %w", p.GTIN, err)
		}
	}
	return tx.Commit()
}

func (c *SQLite) Lookup(ctx context.Context, gtin string) (*product.ProductData, error) {
	var doc string
	err := c.db.QueryRowContext(ctx,
		`SELECT document FROM products WHERE gtin = ?`, gtin).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", gtin, err)
	}

	var p product.ProductData
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", gtin, err)
	}
	return &p, nil
}

func (c *SQLite) List(ctx context.Context) ([]*product.ProductData, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT document FROM products ORDER BY gtin`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []*product.ProductData
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		var p product.ProductData
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			return nil, fmt.Errorf("decode product row: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (c *SQLite) Close() error {
	return c.db.Close()
}

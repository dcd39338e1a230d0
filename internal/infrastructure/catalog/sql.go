package catalog

import (
	"context"
	"fmt"

	"github.com/cartwise/backend/internal/domain"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	category       TEXT NOT NULL DEFAULT '',
	price          DOUBLE PRECISION,
	original_price DOUBLE PRECISION,
	colors         TEXT NOT NULL DEFAULT '',
	type_code      TEXT NOT NULL DEFAULT '',
	gender         TEXT NOT NULL DEFAULT '',
	in_stock       BOOLEAN,
	tags           TEXT NOT NULL DEFAULT '',
	url            TEXT NOT NULL DEFAULT '',
	image          TEXT NOT NULL DEFAULT ''
)`

const selectProducts = `
SELECT id, name, category, price, original_price, colors, type_code,
       gender, in_stock, tags, url, image
FROM products
ORDER BY id`

const upsertProduct = `
INSERT INTO products (id, name, category, price, original_price, colors, type_code, gender, in_stock, tags, url, image)
VALUES (:id, :name, :category, :price, :original_price, :colors, :type_code, :gender, :in_stock, :tags, :url, :image)
ON CONFLICT (id) DO UPDATE SET
	name = excluded.name,
	category = excluded.category,
	price = excluded.price,
	original_price = excluded.original_price,
	colors = excluded.colors,
	type_code = excluded.type_code,
	gender = excluded.gender,
	in_stock = excluded.in_stock,
	tags = excluded.tags,
	url = excluded.url,
	image = excluded.image`

// SQLStore keeps the catalog in a products table. It works against SQLite
// for single-node deployments and PostgreSQL for shared catalogs.
type SQLStore struct {
	db *sqlx.DB
}

// OpenSQLStore connects to the database and ensures the schema exists.
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported catalog driver %q", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	if driver == DriverSQLite {
		// An in-memory SQLite database exists per connection.
		db.SetMaxOpenConns(1)
	}

	store := &SQLStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore wraps an open connection. The caller owns the schema.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create products table: %w", err)
	}
	return nil
}

// Load returns every product row as a raw catalog record.
func (s *SQLStore) Load(ctx context.Context) ([]domain.RawProduct, error) {
	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(selectProducts)); err != nil {
		return nil, fmt.Errorf("%w: query products: %v", domain.ErrCatalogUnavailable, err)
	}

	products := make([]domain.RawProduct, 0, len(rows))
	for _, row := range rows {
		products = append(products, MapRowToRaw(row))
	}
	return products, nil
}

// Upsert writes records in a single transaction. Records without an id are
// skipped; the number written is returned.
func (s *SQLStore) Upsert(ctx context.Context, products []domain.RawProduct) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	written := 0
	for _, raw := range products {
		row := MapRawToRow(raw)
		if row.ID == "" || row.Name == "" {
			continue
		}
		if _, err := tx.NamedExecContext(ctx, upsertProduct, row); err != nil {
			return 0, fmt.Errorf("failed to import product %s: %w", row.ID, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return written, nil
}

// Count returns the number of stored products
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM products"); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

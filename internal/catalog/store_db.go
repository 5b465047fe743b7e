package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id          INTEGER PRIMARY KEY,
	title       TEXT NOT NULL,
	price       NUMERIC(12, 2) NOT NULL CHECK (price >= 0),
	description TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	image       TEXT NOT NULL DEFAULT ''
)`

const productColumns = `id, title, price, description, category, image`

type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres opens a pool through the pgx database/sql driver.
func OpenPostgres(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the products table and loads the demo catalog into an
// empty table.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		if _, err := s.db.ExecContext(ctx, schema); err != nil {
			return err
		}

		for _, p := range seed() {
			_, err := s.db.ExecContext(ctx, `
				INSERT INTO products (`+productColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (id) DO NOTHING
			`, p.ID, p.Title, p.Price, p.Description, p.Category, p.Image)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) List(ctx context.Context) ([]Product, error) {
	return s.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id ASC`)
}

func (s *PostgresStore) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	return s.query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE category = $1
		ORDER BY id ASC
	`, category)
}

func (s *PostgresStore) Categories(ctx context.Context) ([]string, error) {
	var out []string

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT category FROM products ORDER BY category ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]string, 0, 8)
		for rows.Next() {
			var c string
			if err := rows.Scan(&c); err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int) (Product, bool, error) {
	var p Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return scanProduct(s.db.QueryRowContext(ctx, `
			SELECT `+productColumns+`
			FROM products
			WHERE id = $1
		`, id), &p)
	})

	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, err
	}
	return p, true, nil
}

func (s *PostgresStore) query(ctx context.Context, q string, args ...any) ([]Product, error) {
	var out []Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Product, 0, 16)
		for rows.Next() {
			var p Product
			if err := scanProduct(rows, &p); err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner, p *Product) error {
	return row.Scan(&p.ID, &p.Title, &p.Price, &p.Description, &p.Category, &p.Image)
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

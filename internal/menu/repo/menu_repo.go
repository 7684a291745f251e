package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/menu/entity"
)

// Repo provides data access for the menu_items table using sqlx.
type Repo struct {
	db *sqlx.DB
}

func NewRepo(db *sqlx.DB) *Repo { return &Repo{db: db} }

// EnsureTable creates the menu_items table if not exists (idempotent).
func (r *Repo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS menu_items (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  price NUMERIC(10,2) NOT NULL,
  category TEXT,
  image_url TEXT,
  active BOOLEAN NOT NULL DEFAULT true,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_menu_items_active ON menu_items(active);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const selectColumns = `id, name, price, category, image_url, active`

// ListActive returns active rows, newest first.
func (r *Repo) ListActive(ctx context.Context) ([]*entity.MenuItem, error) {
	const q = `SELECT ` + selectColumns + ` FROM menu_items WHERE active = true ORDER BY id DESC`
	items := []*entity.MenuItem{}
	if err := r.db.SelectContext(ctx, &items, q); err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a row and returns it as stored.
func (r *Repo) Create(ctx context.Context, in *entity.MenuItem) (*entity.MenuItem, error) {
	const q = `INSERT INTO menu_items (name, price, category, image_url, active)
		VALUES ($1, $2, $3, $4, $5) RETURNING ` + selectColumns
	var out entity.MenuItem
	if err := r.db.QueryRowxContext(ctx, q, in.Name, in.Price, in.Category, in.ImageURL, in.Active).StructScan(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-stefano-api/internal/subscriber/entity"
)

type SubscriberRepo struct {
	db *sqlx.DB
}

func NewSubscriberRepo(db *sqlx.DB) *SubscriberRepo {
	return &SubscriberRepo{db: db}
}

// EnsureTable creates the push_subscribers table if it does not already exist.
func (r *SubscriberRepo) EnsureTable(ctx context.Context) error {
	const tbl = `
	CREATE TABLE IF NOT EXISTS push_subscribers (
		id varchar(32) PRIMARY KEY,
		url TEXT NOT NULL,
		label varchar(64) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	if _, err := r.db.ExecContext(ctx, tbl); err != nil {
		return err
	}

	const idx = `
	CREATE UNIQUE INDEX IF NOT EXISTS idx_push_subscribers_url ON push_subscribers (url);
	`
	if _, err := r.db.ExecContext(ctx, idx); err != nil {
		return err
	}
	return nil
}

// Create inserts s and fills CreatedAt from the database.
func (r *SubscriberRepo) Create(ctx context.Context, s *entity.Subscriber) error {
	const q = `INSERT INTO push_subscribers (id, url, label) VALUES ($1, $2, $3) RETURNING created_at`
	return r.db.QueryRowxContext(ctx, q, s.ID, s.URL, s.Label).Scan(&s.CreatedAt)
}

// List returns every subscriber, oldest first.
func (r *SubscriberRepo) List(ctx context.Context) ([]*entity.Subscriber, error) {
	const q = `SELECT id, url, label, created_at FROM push_subscribers ORDER BY created_at, id`
	out := []*entity.Subscriber{}
	if err := r.db.SelectContext(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

// Targets returns every subscriber URL for the push notifier.
func (r *SubscriberRepo) Targets(ctx context.Context) ([]string, error) {
	var urls []string
	if err := r.db.SelectContext(ctx, &urls, `SELECT url FROM push_subscribers ORDER BY created_at, id`); err != nil {
		return nil, err
	}
	return urls, nil
}

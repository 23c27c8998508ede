package postgres

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parse dsn")
	}
	cfg.MaxConns = 8
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping")
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS receipts (
	id          UUID PRIMARY KEY,
	external_id TEXT UNIQUE,
	policy      TEXT NOT NULL,
	total       NUMERIC NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	failure_kind    TEXT,
	failure_message TEXT
);
CREATE TABLE IF NOT EXISTS receipt_lines (
	receipt_id   UUID NOT NULL REFERENCES receipts(id) ON DELETE CASCADE,
	line_no      INT NOT NULL,
	product_id   TEXT NOT NULL,
	product_name TEXT NOT NULL,
	qty          INT NOT NULL,
	price        NUMERIC NOT NULL,
	PRIMARY KEY (receipt_id, line_no)
);
ALTER TABLE receipts ADD COLUMN IF NOT EXISTS failure_kind TEXT;
ALTER TABLE receipts ADD COLUMN IF NOT EXISTS failure_message TEXT;`

// Migrate creates the receipt journal tables if they are missing.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return errors.Wrap(err, "migrate")
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"
)

// EnsureSchema creates the accounts table if it does not exist. Used by dev
// bootstrap and the integration suite; production deployments run proper
// migrations instead.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS accounts (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  address TEXT NOT NULL DEFAULT '',
  image TEXT NOT NULL DEFAULT '',
  is_business BOOLEAN NOT NULL DEFAULT FALSE,
  role TEXT NOT NULL DEFAULT 'tradesman',

  failed_login_attempts INT NOT NULL DEFAULT 0,
  lock_until TIMESTAMPTZ NULL,

  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`)
	return err
}

package keyring

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const schema = `CREATE TABLE IF NOT EXISTS store_keys (
    store_id VARCHAR(32) PRIMARY KEY,
    secret_key VARCHAR(128) NOT NULL,
    status SMALLINT NOT NULL DEFAULT 1,
    create_at BIGINT NOT NULL,
    update_at BIGINT DEFAULT NULL);
CREATE INDEX IF NOT EXISTS idx_store_keys_status ON store_keys(status);`

// Postgres keeps one signing secret per store, for fleets where each store
// signs with its own key.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens the registry over an existing connection and ensures the
// schema exists.
func NewPostgres(db *sql.DB) (*Postgres, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create store_keys table: %w", err)
	}
	return &Postgres{db: db}, nil
}

// Open dials the registry from a connection string.
func Open(url string) (*Postgres, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open key registry: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to reach key registry: %w", err)
	}
	return NewPostgres(db)
}

func (p *Postgres) Secret(ctx context.Context, storeID string) (string, error) {
	var (
		secret string
		status int
	)
	row := p.db.QueryRowContext(ctx,
		`SELECT secret_key, status FROM store_keys WHERE store_id = $1`, storeID)
	if err := row.Scan(&secret, &status); err != nil {
		if err == sql.ErrNoRows {
			return "", ErrStoreNotFound
		}
		return "", fmt.Errorf("failed to look up signing key: %w", err)
	}
	if status != 1 {
		return "", ErrStoreDisabled
	}
	return secret, nil
}

// Put creates or rotates the signing key for a store.
func (p *Postgres) Put(ctx context.Context, storeID, secret string) error {
	now := time.Now().Unix()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO store_keys (store_id, secret_key, status, create_at)
         VALUES ($1, $2, 1, $3)
         ON CONFLICT (store_id)
         DO UPDATE SET secret_key = $2, status = 1, update_at = $3`,
		storeID, secret, now)
	if err != nil {
		return fmt.Errorf("failed to store signing key: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

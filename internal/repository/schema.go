package repository

import (
	"database/sql"
	"fmt"
)

// sqliteSchema mirrors the Postgres migrations for the in-memory batch mode.
// Kept in sync with cmd/migrate/migrations by hand; the tables are small
// enough that drift is easy to spot.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS flyers (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    merchant_name    TEXT NOT NULL,
    promotion_expiry TEXT,
    source_contact   TEXT NOT NULL,
    artifact_path    TEXT NOT NULL,
    created_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS catalog_products (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    product_name TEXT NOT NULL,
    brand        TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (product_name, brand)
);

CREATE TABLE IF NOT EXISTS promotions (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    flyer_id           INTEGER NOT NULL REFERENCES flyers (id) ON DELETE CASCADE,
    product_id         INTEGER NOT NULL REFERENCES catalog_products (id),
    price_amount       REAL NOT NULL,
    standardized_unit  TEXT NOT NULL,
    standardized_value REAL NOT NULL,
    price_per_unit     REAL NOT NULL,
    created_at         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// EnsureSchema creates the tables when they are missing.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// The identity column never hands out a value twice, so ids of deleted
// members stay dead.
const schema = `
CREATE TABLE IF NOT EXISTS members (
	id           BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	name         TEXT NOT NULL,
	section      TEXT NOT NULL,
	phone_number TEXT,
	email        TEXT,
	roles        TEXT NOT NULL DEFAULT ''
)`

// Migrate creates the members table when it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create members table: %w", err)
	}
	return nil
}

package migrations_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/joshcord99/stoxai/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// :memory: databases are per-connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUp_CreatesUsersTable(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	if err := migrations.Up(ctx, db); err != nil {
		t.Fatalf("run: %v", err)
	}

	_, err := db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, watchlist) VALUES (?, ?, ?)",
		"test@example.com", "hash123", `["AAPL"]`,
	)
	if err != nil {
		t.Fatalf("insert into users: %v", err)
	}

	_, err = db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash) VALUES (?, ?)",
		"test@example.com", "hash456",
	)
	if err == nil {
		t.Fatal("expected unique violation on duplicate email")
	}
}

func TestUp_Idempotent(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	if err := migrations.Up(ctx, db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := migrations.Up(ctx, db); err != nil {
		t.Fatalf("second run (idempotent): %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM goose_db_version WHERE version_id = 1 AND is_applied",
	).Scan(&count); err != nil {
		t.Fatalf("count goose_db_version: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 applied record for version 1, got %d", count)
	}
}

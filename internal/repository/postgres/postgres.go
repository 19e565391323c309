// Package postgres is the PostgreSQL credential store. It talks to the
// database through database/sql with the pgx driver and migrates with goose.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/joshcord99/stoxai/internal/domain"
	"github.com/joshcord99/stoxai/internal/repository/postgres/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// DB wraps a PostgreSQL connection pool and vends repositories bound to it.
type DB struct {
	SqlDB *sql.DB
	users *UserRepository
}

// Open connects to the database described by dsn.
func Open(ctx context.Context, dsn string) (*DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return NewDB(db), nil
}

// NewDB wraps an existing handle.
func NewDB(db *sql.DB) *DB {
	return &DB{SqlDB: db, users: NewUserRepository(db)}
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate runs the embedded goose migrations.
func (d *DB) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := gooseUpContext(ctx, d.SqlDB, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (d *DB) Users() domain.UserRepository {
	return d.users
}

func (d *DB) Close() error {
	return d.SqlDB.Close()
}

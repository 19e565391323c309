package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/joshcord99/stoxai/internal/domain"
)

const uniqueViolation = "23505"

// UserRepository implements domain.UserRepository on PostgreSQL.
// The watchlist is a TEXT[] column.
type UserRepository struct {
	db    *sql.DB
	types *pgtype.Map
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db, types: pgtype.NewMap()}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query :=
		`INSERT INTO users (email, password_hash, first_name, last_name, watchlist)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Watchlist,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query :=
		`SELECT id, email, password_hash, first_name, last_name, watchlist, created_at, updated_at
		 FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query :=
		`SELECT id, email, password_hash, first_name, last_name, watchlist, created_at, updated_at
		 FROM users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var (
		user      domain.User
		firstName sql.NullString
		lastName  sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &firstName, &lastName,
		r.types.SQLScanner(&user.Watchlist), &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if firstName.Valid {
		user.FirstName = &firstName.String
	}
	if lastName.Valid {
		user.LastName = &lastName.String
	}
	return &user, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, firstName, lastName *string) error {
	query :=
		`UPDATE users SET first_name = $1, last_name = $2, updated_at = now()
		 WHERE id = $3`
	return r.exec(ctx, query, firstName, lastName, id)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query :=
		`UPDATE users SET password_hash = $1, updated_at = now()
		 WHERE id = $2`
	return r.exec(ctx, query, passwordHash, id)
}

func (r *UserRepository) SetWatchlist(ctx context.Context, id int64, tickers []string) error {
	query :=
		`UPDATE users SET watchlist = $1, updated_at = now()
		 WHERE id = $2`
	return r.exec(ctx, query, tickers, id)
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (r *UserRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/joshcord99/stoxai/internal/domain"
)

// arrayConverter lets []string arguments through to sqlmock, the way the pgx
// driver accepts them for TEXT[] columns.
type arrayConverter struct{}

func (arrayConverter) ConvertValue(v any) (driver.Value, error) {
	if s, ok := v.([]string); ok {
		return s, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

func newRepoWithMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp),
		sqlmock.ValueConverterOption(arrayConverter{}),
	)
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewUserRepository(db), mock, db
}

var userRowColumns = []string{"id", "email", "password_hash", "first_name", "last_name", "watchlist", "created_at", "updated_at"}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	first := "Ada"
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users.*RETURNING\s+id,\s*created_at,\s*updated_at$`).
		WithArgs("ada@example.com", "digest", "Ada", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), now, now))

	u := &domain.User{Email: "ada@example.com", PasswordHash: "digest", FirstName: &first}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if u.ID != 42 || !u.CreatedAt.Equal(now) {
		t.Fatalf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), &domain.User{Email: "dup@example.com", PasswordHash: "d"})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("want domain.ErrDuplicateEmail, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &domain.User{Email: "a@example.com", PasswordHash: "d"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`(?s)^SELECT\s+id,\s*email.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(int64(7), "a@x.com", "digest", "Ada", nil, "{AAPL,BTC}", now, now))

	got, err := repo.GetByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Email != "a@x.com" || got.FirstName == nil || *got.FirstName != "Ada" || got.LastName != nil {
		t.Fatalf("unexpected user: %+v", got)
	}
	if len(got.Watchlist) != 2 || got.Watchlist[0] != "AAPL" || got.Watchlist[1] != "BTC" {
		t.Fatalf("unexpected watchlist: %v", got.Watchlist)
	}
}

func TestGetByID_NullWatchlist(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`(?s)^SELECT.*WHERE\s+id\s*=\s*\$1$`).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(int64(8), "b@x.com", "digest", nil, nil, nil, now, now))

	got, err := repo.GetByID(context.Background(), 8)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Watchlist != nil {
		t.Fatalf("expected nil watchlist, got %v", got.Watchlist)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT.*WHERE\s+email\s*=\s*\$1$`).
		WithArgs("ghost@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@x.com")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want domain.ErrNotFound, got %v", err)
	}
}

func TestSetWatchlist_SingleStatement(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+watchlist\s*=\s*\$1,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$2$`).
		WithArgs([]string{"TSLA"}, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetWatchlist(context.Background(), 3, []string{"TSLA"}); err != nil {
		t.Fatalf("SetWatchlist error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSetWatchlist_UnknownUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+watchlist`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetWatchlist(context.Background(), 99, []string{"AAPL"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want domain.ErrNotFound, got %v", err)
	}
}

func TestUpdateProfile_WritesNulls(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+first_name\s*=\s*\$1,\s*last_name\s*=\s*\$2`).
		WithArgs(nil, nil, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateProfile(context.Background(), 5, nil, nil); err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
}

func TestUpdatePassword(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$1`).
		WithArgs("new-hash", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+password_hash`).
		WithArgs("new-hash", int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdatePassword(context.Background(), 5, "new-hash"); err != nil {
		t.Fatalf("UpdatePassword error: %v", err)
	}
	if err := repo.UpdatePassword(context.Background(), 9, "new-hash"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("UpdatePassword missing user: want domain.ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE\s+FROM\s+users`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 5); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := repo.Delete(context.Background(), 5); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second Delete: want domain.ErrNotFound, got %v", err)
	}
}

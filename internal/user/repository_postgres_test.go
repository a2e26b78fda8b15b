package user

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPostgresRepository_GetByIdentity(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "external_identity", "email", "role", "full_name", "phone", "address", "created_at"}).
		AddRow(int64(7), "uid-7", "seven@example.com", "seller", "Seven", nil, "1 Drone Rd", created)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).WithArgs("uid-7").WillReturnRows(rows)

	u, err := NewPostgresRepository(db).GetByIdentity(context.Background(), "uid-7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != 7 || u.Role != RoleSeller || u.Phone != nil || u.Address == nil || *u.Address != "1 Drone Rd" {
		t.Fatalf("unexpected user %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresRepository_GetByIdentityMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := NewPostgresRepository(db).GetByIdentity(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	created := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("uid-1", "a@example.com", "user", "A", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), created))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("uid-1", "a@example.com", "user", "A", nil, nil).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	repo := NewPostgresRepository(db)
	u := User{ExternalIdentity: "uid-1", Email: "a@example.com", Role: RoleUser, FullName: "A"}
	if err := repo.Create(context.Background(), &u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != 11 {
		t.Fatalf("expected id 11, got %d", u.ID)
	}

	dup := User{ExternalIdentity: "uid-1", Email: "a@example.com", Role: RoleUser, FullName: "A"}
	if err := repo.Create(context.Background(), &dup); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPostgresRepository_Exists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).WithArgs("uid-1", "a@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := NewPostgresRepository(db).Exists(context.Background(), "uid-1", "a@example.com")
	if err != nil || !ok {
		t.Fatalf("expected exists, got %v %v", ok, err)
	}
}

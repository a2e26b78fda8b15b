package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/wichananm65/drone-shop-backend/internal/infrastructure/database/postgres"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	getUserByIdentityQuery = `
		SELECT id, external_identity, email, role, full_name, phone, address, created_at
		FROM users
		WHERE external_identity = $1
	`
	userExistsQuery = `SELECT EXISTS (SELECT 1 FROM users WHERE external_identity = $1 OR email = $2)`

	insertUserQuery = `
		INSERT INTO users (external_identity, email, role, full_name, phone, address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByIdentity(ctx context.Context, externalIdentity string) (User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, getUserByIdentityQuery, externalIdentity))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, externalIdentity, email string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, userExistsQuery, externalIdentity, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	err := r.db.QueryRowContext(ctx, insertUserQuery,
		u.ExternalIdentity,
		u.Email,
		string(u.Role),
		u.FullName,
		nullable(u.Phone),
		nullable(u.Address),
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil && postgres.IsUniqueViolation(err) {
		return ErrUserExists
	}
	return err
}

func scanUser(scanner rowScanner) (User, error) {
	var (
		u       User
		role    string
		phone   sql.NullString
		address sql.NullString
	)
	if err := scanner.Scan(&u.ID, &u.ExternalIdentity, &u.Email, &role, &u.FullName, &phone, &address, &u.CreatedAt); err != nil {
		return User{}, err
	}
	u.Role = Role(role)
	if phone.Valid {
		u.Phone = &phone.String
	}
	if address.Valid {
		u.Address = &address.String
	}
	return u, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

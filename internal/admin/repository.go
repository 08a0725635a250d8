package admin

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phoneid/phoneid/internal/apperr"
)

const uniqueViolation = "23505"

// Repository persists console admins.
type Repository interface {
	Create(ctx context.Context, admin Admin) error
	FindByEmail(ctx context.Context, email string) (Admin, error)
	FindByID(ctx context.Context, id string) (Admin, error)
}

// PostgresRepository stores admins in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed admin repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new admin.
func (r *PostgresRepository) Create(ctx context.Context, admin Admin) error {
	_, err := r.db.Exec(ctx, `INSERT INTO admins (id, email, password_hash, created_at)
        VALUES ($1, $2, $3, $4)`, admin.ID, admin.Email, admin.PasswordHash, admin.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperr.Newf(apperr.KindDuplicate, "admin %s already exists", admin.Email)
		}
		return err
	}
	return nil
}

// FindByEmail fetches an admin by email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Admin, error) {
	row := r.db.QueryRow(ctx, `SELECT id, email, password_hash, created_at FROM admins WHERE email = $1`, email)
	return scanAdmin(row)
}

// FindByID fetches an admin by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Admin, error) {
	row := r.db.QueryRow(ctx, `SELECT id, email, password_hash, created_at FROM admins WHERE id = $1`, id)
	return scanAdmin(row)
}

func scanAdmin(row pgx.Row) (Admin, error) {
	var a Admin
	var createdAt time.Time
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Admin{}, apperr.New(apperr.KindNotFound, "admin not found")
		}
		return Admin{}, err
	}
	a.CreatedAt = createdAt.UTC()
	return a, nil
}

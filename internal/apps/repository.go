package apps

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

// Repository persists tenant apps.
type Repository interface {
	Create(ctx context.Context, app App) error
	Get(ctx context.Context, id string) (App, error)
	// List returns a page of apps without their secrets, plus the total count.
	List(ctx context.Context, limit, offset int) ([]App, int64, error)
	UpdateSecret(ctx context.Context, id, secret string) error
	Delete(ctx context.Context, id string) error
}

// PostgresRepository stores apps in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed app repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new app, mapping a unique violation to a duplicate error.
func (r *PostgresRepository) Create(ctx context.Context, app App) error {
	_, err := r.db.Exec(ctx, `INSERT INTO apps (id, secret, platform, server_key, created_at)
        VALUES ($1, $2, $3, $4, $5)`,
		app.ID, app.Secret, app.Platform, app.ServerKey, app.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperr.Newf(apperr.KindDuplicate, "app %s already exists", app.ID)
		}
		return err
	}
	return nil
}

// Get fetches an app, including its secret, for credential validation.
func (r *PostgresRepository) Get(ctx context.Context, id string) (App, error) {
	row := r.db.QueryRow(ctx, `SELECT id, secret, platform, server_key, created_at FROM apps WHERE id = $1`, id)
	var app App
	var createdAt time.Time
	if err := row.Scan(&app.ID, &app.Secret, &app.Platform, &app.ServerKey, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return App{}, apperr.Newf(apperr.KindNotFound, "app %s not found", id)
		}
		return App{}, err
	}
	app.CreatedAt = createdAt.UTC()
	return app, nil
}

// List returns a page of apps ordered by creation time. The secret column is
// deliberately not selected.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]App, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM apps`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `SELECT id, platform, server_key, created_at FROM apps
        ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []App
	for rows.Next() {
		var app App
		var createdAt time.Time
		if err := rows.Scan(&app.ID, &app.Platform, &app.ServerKey, &createdAt); err != nil {
			return nil, 0, err
		}
		app.CreatedAt = createdAt.UTC()
		out = append(out, app)
	}
	return out, total, rows.Err()
}

// UpdateSecret replaces the stored secret for an app.
func (r *PostgresRepository) UpdateSecret(ctx context.Context, id, secret string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE apps SET secret = $1 WHERE id = $2`, secret, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.Newf(apperr.KindNotFound, "app %s not found", id)
	}
	return nil
}

// Delete removes an app. Per-app user identities cascade at the schema level.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM apps WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.Newf(apperr.KindNotFound, "app %s not found", id)
	}
	return nil
}

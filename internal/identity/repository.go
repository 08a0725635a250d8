package identity

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

// Repository persists global users and their per-app identities. Uniqueness
// on user lookup, on (userId, appId) and on hash is enforced by the store and
// is the concurrency-safety mechanism for duplicate writers.
type Repository interface {
	CreateUser(ctx context.Context, user User) error
	FindUserByLookup(ctx context.Context, lookup string) (User, error)

	// UpsertAppUser inserts the per-app identity or, when the (userId, appId)
	// pair exists, refreshes its device fields. The hash is immutable.
	UpsertAppUser(ctx context.Context, au AppUser) error
	FindAppUserByHash(ctx context.Context, hash string) (AppUser, error)
	FindAppUser(ctx context.Context, userID, appID string) (AppUser, error)
	UpdateDevice(ctx context.Context, hash, deviceID, notifID string) error
	DeleteByApp(ctx context.Context, appID string) error
}

// PostgresRepository stores identities in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateUser inserts a global user anchor.
func (r *PostgresRepository) CreateUser(ctx context.Context, user User) error {
	_, err := r.db.Exec(ctx, `INSERT INTO users (id, lookup, created_at) VALUES ($1, $2, $3)`,
		user.ID, user.Lookup, user.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperr.New(apperr.KindDuplicate, "user already exists")
		}
		return err
	}
	return nil
}

// FindUserByLookup resolves a user by the keyed hash of their phone number.
func (r *PostgresRepository) FindUserByLookup(ctx context.Context, lookup string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, lookup, created_at FROM users WHERE lookup = $1`, lookup)
	var u User
	var createdAt time.Time
	if err := row.Scan(&u.ID, &u.Lookup, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperr.New(apperr.KindNotFound, "user not found")
		}
		return User{}, err
	}
	u.CreatedAt = createdAt.UTC()
	return u, nil
}

// UpsertAppUser inserts or refreshes a per-app identity.
func (r *PostgresRepository) UpsertAppUser(ctx context.Context, au AppUser) error {
	_, err := r.db.Exec(ctx, `INSERT INTO app_users (user_id, app_id, hash, device_id, notif_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (user_id, app_id) DO UPDATE SET device_id = EXCLUDED.device_id, notif_id = EXCLUDED.notif_id`,
		au.UserID, au.AppID, au.Hash, au.DeviceID, au.NotifID, au.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperr.New(apperr.KindDuplicate, "app user hash already exists")
		}
		return err
	}
	return nil
}

// FindAppUserByHash resolves a per-app identity from the client-held hash.
func (r *PostgresRepository) FindAppUserByHash(ctx context.Context, hash string) (AppUser, error) {
	row := r.db.QueryRow(ctx, `SELECT user_id, app_id, hash, device_id, notif_id, created_at
        FROM app_users WHERE hash = $1`, hash)
	return scanAppUser(row)
}

// FindAppUser resolves the identity for a (user, app) pair.
func (r *PostgresRepository) FindAppUser(ctx context.Context, userID, appID string) (AppUser, error) {
	row := r.db.QueryRow(ctx, `SELECT user_id, app_id, hash, device_id, notif_id, created_at
        FROM app_users WHERE user_id = $1 AND app_id = $2`, userID, appID)
	return scanAppUser(row)
}

// UpdateDevice refreshes the push-routing fields for an identity.
func (r *PostgresRepository) UpdateDevice(ctx context.Context, hash, deviceID, notifID string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE app_users SET device_id = $1, notif_id = $2 WHERE hash = $3`,
		deviceID, notifID, hash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.New(apperr.KindNotFound, "app user not found")
	}
	return nil
}

// DeleteByApp removes every per-app identity belonging to an app.
func (r *PostgresRepository) DeleteByApp(ctx context.Context, appID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM app_users WHERE app_id = $1`, appID)
	return err
}

func scanAppUser(row pgx.Row) (AppUser, error) {
	var au AppUser
	var createdAt time.Time
	if err := row.Scan(&au.UserID, &au.AppID, &au.Hash, &au.DeviceID, &au.NotifID, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AppUser{}, apperr.New(apperr.KindNotFound, "app user not found")
		}
		return AppUser{}, err
	}
	au.CreatedAt = createdAt.UTC()
	return au, nil
}

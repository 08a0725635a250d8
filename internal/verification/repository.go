package verification

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phoneid/phoneid/internal/apperr"
)

// Repository persists pending phone verifications.
type Repository interface {
	// Upsert stores a pending verification, replacing any prior code for the
	// same number.
	Upsert(ctx context.Context, v Verification) error
	Find(ctx context.Context, number string) (Verification, error)
	// DeleteMatching removes the verification only if both number and code
	// match, returning the number of rows removed. This is the authoritative
	// check-and-consume: the store guarantees at most one caller sees 1.
	DeleteMatching(ctx context.Context, number, code string) (int64, error)
	Delete(ctx context.Context, number string) error
}

// PostgresRepository stores verifications in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed verification repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts or replaces the pending verification for a number.
func (r *PostgresRepository) Upsert(ctx context.Context, v Verification) error {
	_, err := r.db.Exec(ctx, `INSERT INTO verifications (number, code, created_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (number) DO UPDATE SET code = EXCLUDED.code, created_at = EXCLUDED.created_at`,
		v.Number, v.Code, v.CreatedAt.UTC())
	return err
}

// Find fetches the pending verification for a number.
func (r *PostgresRepository) Find(ctx context.Context, number string) (Verification, error) {
	row := r.db.QueryRow(ctx, `SELECT number, code, created_at FROM verifications WHERE number = $1`, number)
	var v Verification
	var createdAt time.Time
	if err := row.Scan(&v.Number, &v.Code, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Verification{}, apperr.Newf(apperr.KindNotFound, "no pending verification for %s", number)
		}
		return Verification{}, err
	}
	v.CreatedAt = createdAt.UTC()
	return v, nil
}

// DeleteMatching atomically consumes the verification when the code matches.
func (r *PostgresRepository) DeleteMatching(ctx context.Context, number, code string) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM verifications WHERE number = $1 AND code = $2`, number, code)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// Delete removes any pending verification for a number.
func (r *PostgresRepository) Delete(ctx context.Context, number string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM verifications WHERE number = $1`, number)
	return err
}

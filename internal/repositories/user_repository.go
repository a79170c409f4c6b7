package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// SetBanned flips the ban flag for a user, creating the row if the main
// app hasn't mirrored it here yet. Calling it twice with the same value is
// a no-op.
func (r *UserRepository) SetBanned(ctx context.Context, uid string, banned bool) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (uid, banned)
		VALUES ($1, $2)
		ON CONFLICT (uid) DO UPDATE
		SET banned = EXCLUDED.banned, updated_at = NOW()`, uid, banned)
	if err != nil {
		return fmt.Errorf("set banned for %s: %w", uid, err)
	}
	return nil
}

// IsBanned reports the current ban flag; unknown users are not banned.
func (r *UserRepository) IsBanned(ctx context.Context, uid string) (bool, error) {
	var banned bool
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE((SELECT banned FROM users WHERE uid = $1), FALSE)`, uid).Scan(&banned)
	if err != nil {
		return false, fmt.Errorf("is banned %s: %w", uid, err)
	}
	return banned, nil
}

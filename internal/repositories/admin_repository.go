package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminRepository reads the admin directory: the set of email addresses
// allowed to perform moderation actions. Emails are stored lowercased and
// matched case-insensitively.
type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) IsAdmin(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, nil
	}
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM admin_directory WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("admin lookup: %w", err)
	}
	return exists, nil
}

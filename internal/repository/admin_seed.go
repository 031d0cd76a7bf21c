package repository

import (
	"context"

	"fieldtrack-backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// SeedAdmin creates the default admin account on first run. Idempotent:
// users.email is unique.
func (r UserRepository) SeedAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = r.DB.Pool.Exec(ctx, `
		INSERT INTO users (name, email, role, password_hash, created_at, updated_at)
		VALUES ('Administrator', $1, $2, $3, now(), now())
		ON CONFLICT (email) DO NOTHING
	`, email, domain.RoleAdmin, string(hash))
	return err
}

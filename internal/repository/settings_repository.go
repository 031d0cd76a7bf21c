package repository

import (
	"context"
	"errors"

	"fieldtrack-backend/internal/db"
	"fieldtrack-backend/internal/domain"
	"github.com/jackc/pgx/v5"
)

type SettingsRepository struct {
	DB *db.Postgres
}

// Get reads the singleton row. ErrNotFound before the first Save.
func (r SettingsRepository) Get(ctx context.Context) (*domain.GlobalSettings, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT default_domain, updated_at
		FROM global_settings
		WHERE id=1
	`)
	var s domain.GlobalSettings
	if err := row.Scan(&s.DefaultDomain, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r SettingsRepository) Save(ctx context.Context, s domain.GlobalSettings) (*domain.GlobalSettings, error) {
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO global_settings (id, default_domain, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET
			default_domain=EXCLUDED.default_domain,
			updated_at=now()
		RETURNING default_domain, updated_at
	`, s.DefaultDomain).Scan(&s.DefaultDomain, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

package repository

import (
	"context"
	"errors"

	"fieldtrack-backend/internal/db"
	"fieldtrack-backend/internal/domain"
	"github.com/jackc/pgx/v5"
)

type BroadcastRepository struct {
	DB *db.Postgres
}

func (r BroadcastRepository) Create(ctx context.Context, title, message string) (*domain.Broadcast, error) {
	b := domain.Broadcast{Title: title, Message: message, IsActive: true}
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO broadcasts (title, message, is_active, created_at)
		VALUES ($1,$2,true, now())
		RETURNING id, created_at
	`, title, message).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Latest returns the single most-recent active broadcast. Clients keep their
// own last-seen id; the server holds no per-client read state.
func (r BroadcastRepository) Latest(ctx context.Context) (*domain.Broadcast, error) {
	var b domain.Broadcast
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT id, title, message, is_active, created_at
		FROM broadcasts
		WHERE is_active
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`).Scan(&b.ID, &b.Title, &b.Message, &b.IsActive, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r BroadcastRepository) List(ctx context.Context, limit int) ([]domain.Broadcast, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, title, message, is_active, created_at
		FROM broadcasts
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Broadcast
	for rows.Next() {
		var b domain.Broadcast
		if err := rows.Scan(&b.ID, &b.Title, &b.Message, &b.IsActive, &b.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

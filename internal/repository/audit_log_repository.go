package repository

import (
	"context"

	"fieldtrack-backend/internal/db"
	"fieldtrack-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
)

type AuditLogRepository struct {
	DB *db.Postgres
}

type CreateAuditLogInput struct {
	OwnerID *int64
	Title   string
	Message string
	Actor   string
	Type    domain.AuditLogType
}

func (r AuditLogRepository) Create(ctx context.Context, in CreateAuditLogInput) (int64, error) {
	var id int64
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO audit_logs (owner_id, title, message, actor, type, logged_at)
		VALUES ($1,$2,$3,$4,$5, now())
		RETURNING id
	`, in.OwnerID, in.Title, in.Message, in.Actor, string(in.Type)).Scan(&id)
	return id, err
}

func (r AuditLogRepository) List(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, owner_id, title, message, actor, type, logged_at
		FROM audit_logs
		ORDER BY logged_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditLog
	for rows.Next() {
		var l domain.AuditLog
		var typ string
		var ownerID pgtype.Int8
		if err := rows.Scan(&l.ID, &ownerID, &l.Title, &l.Message, &l.Actor, &typ, &l.LoggedAt); err != nil {
			return nil, err
		}
		l.Type = domain.AuditLogType(typ)
		if ownerID.Valid {
			l.OwnerID = &ownerID.Int64
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

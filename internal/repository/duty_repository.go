package repository

import (
	"context"
	"time"

	"fieldtrack-backend/internal/db"
	"fieldtrack-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
)

type DutyRepository struct {
	DB *db.Postgres
}

// Toggle flips the employee's duty flag and appends a duty log row in one
// transaction. Coordinates may be nil (GPS unavailable at toggle time).
// Calling twice with the same value leaves the flag unchanged but still
// appends a log row per call.
func (r DutyRepository) Toggle(ctx context.Context, employeeID int64, onDuty bool, coords *domain.LatLng) (*domain.DutyLog, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE users SET is_on_duty=$2, updated_at=now()
		WHERE id=$1 AND role=$3 AND deleted_at IS NULL
	`, employeeID, onDuty, domain.RoleEmployee)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	status := domain.DutyOff
	if onDuty {
		status = domain.DutyOn
	}
	var lat, lng *float64
	if coords != nil {
		lat = &coords.Latitude
		lng = &coords.Longitude
	}
	log := domain.DutyLog{EmployeeID: employeeID, Status: status, Latitude: lat, Longitude: lng}
	err = tx.QueryRow(ctx, `
		INSERT INTO duty_logs (employee_id, status, latitude, longitude, logged_at)
		VALUES ($1,$2,$3,$4, now())
		RETURNING id, logged_at
	`, employeeID, string(status), lat, lng).Scan(&log.ID, &log.LoggedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &log, nil
}

// ListDay returns an employee's duty toggles for the given calendar day.
func (r DutyRepository) ListDay(ctx context.Context, employeeID int64, day time.Time) ([]domain.DutyLog, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, employee_id, status, latitude, longitude, logged_at
		FROM duty_logs
		WHERE employee_id=$1 AND logged_at >= $2 AND logged_at < $2 + interval '1 day'
		ORDER BY logged_at ASC
	`, employeeID, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.DutyLog
	for rows.Next() {
		var l domain.DutyLog
		var status string
		var lat, lng pgtype.Float8
		if err := rows.Scan(&l.ID, &l.EmployeeID, &status, &lat, &lng, &l.LoggedAt); err != nil {
			return nil, err
		}
		l.Status = domain.DutyStatus(status)
		if lat.Valid {
			l.Latitude = &lat.Float64
		}
		if lng.Valid {
			l.Longitude = &lng.Float64
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

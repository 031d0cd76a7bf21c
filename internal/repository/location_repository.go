package repository

import (
	"context"
	"time"

	"fieldtrack-backend/internal/db"
	"fieldtrack-backend/internal/domain"
)

type LocationRepository struct {
	DB *db.Postgres
}

// RecordSample appends a history row and overwrites the user's last-known
// pointer in one transaction. Samples are accepted regardless of duty state;
// owner views carry the duty flag so off-duty segments can be filtered
// client-side.
func (r LocationRepository) RecordSample(ctx context.Context, userID int64, lat, lng float64, at time.Time) (*domain.LocationSample, error) {
	if at.IsZero() {
		at = time.Now()
	}

	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	sample := domain.LocationSample{EmployeeID: userID, Latitude: lat, Longitude: lng, RecordedAt: at}
	err = tx.QueryRow(ctx, `
		INSERT INTO location_history (employee_id, latitude, longitude, recorded_at)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, userID, lat, lng, at).Scan(&sample.ID)
	if err != nil {
		return nil, err
	}

	// Last-write-wins: concurrent devices for one account may interleave.
	tag, err := tx.Exec(ctx, `
		UPDATE users SET last_latitude=$2, last_longitude=$3, last_location_update=$4, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL
	`, userID, lat, lng, at)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &sample, nil
}

// Trail returns an employee's samples for the given calendar day, oldest
// first.
func (r LocationRepository) Trail(ctx context.Context, employeeID int64, day time.Time) ([]domain.LocationSample, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, employee_id, latitude, longitude, recorded_at
		FROM location_history
		WHERE employee_id=$1 AND recorded_at >= $2 AND recorded_at < $2 + interval '1 day'
		ORDER BY recorded_at ASC
	`, employeeID, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.LocationSample
	for rows.Next() {
		var s domain.LocationSample
		if err := rows.Scan(&s.ID, &s.EmployeeID, &s.Latitude, &s.Longitude, &s.RecordedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

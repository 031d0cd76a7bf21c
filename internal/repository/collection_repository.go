package repository

import (
	"context"
	"time"

	"fieldtrack-backend/internal/db"
	"fieldtrack-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
)

type CollectionRepository struct {
	DB *db.Postgres
}

type CreateCollectionInput struct {
	OwnerID     int64
	ShopID      int64
	EmployeeID  int64
	Amount      float64
	PaymentMode domain.PaymentMode
	Remarks     string
	Coords      *domain.LatLng
}

// Create records a collection event and decrements the shop's due balance in
// a single transaction. The decrement is a relative update, never a
// read-modify-write, so concurrent collections against the same shop all
// land. Dues may go negative; overpayment is accepted business behavior.
func (r CollectionRepository) Create(ctx context.Context, in CreateCollectionInput) (*domain.Collection, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE shops SET due_amount = due_amount - $1, updated_at = now()
		WHERE id=$2 AND owner_id=$3 AND deleted_at IS NULL
	`, in.Amount, in.ShopID, in.OwnerID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	var lat, lng *float64
	if in.Coords != nil {
		lat = &in.Coords.Latitude
		lng = &in.Coords.Longitude
		// Backfill shop coordinates from the first located visit.
		_, err = tx.Exec(ctx, `
			UPDATE shops SET latitude=$1, longitude=$2, updated_at=now()
			WHERE id=$3 AND owner_id=$4 AND latitude IS NULL AND longitude IS NULL
		`, lat, lng, in.ShopID, in.OwnerID)
		if err != nil {
			return nil, err
		}
	}

	c := domain.Collection{
		ShopID:      in.ShopID,
		EmployeeID:  in.EmployeeID,
		Amount:      in.Amount,
		PaymentMode: in.PaymentMode,
		Remarks:     in.Remarks,
		Latitude:    lat,
		Longitude:   lng,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO collections (shop_id, employee_id, amount, payment_mode, remarks, latitude, longitude, collected_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7, now())
		RETURNING id, collected_at
	`, c.ShopID, c.EmployeeID, c.Amount, string(c.PaymentMode), c.Remarks, lat, lng).Scan(&c.ID, &c.CollectedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r CollectionRepository) ListForEmployee(ctx context.Context, employeeID int64, limit int) ([]domain.Collection, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, shop_id, employee_id, amount, payment_mode, remarks, latitude, longitude, collected_at
		FROM collections
		WHERE employee_id=$1
		ORDER BY collected_at DESC, id DESC
		LIMIT $2
	`, employeeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Collection
	for rows.Next() {
		var c domain.Collection
		var mode string
		var lat, lng pgtype.Float8
		if err := rows.Scan(&c.ID, &c.ShopID, &c.EmployeeID, &c.Amount, &mode, &c.Remarks, &lat, &lng, &c.CollectedAt); err != nil {
			return nil, err
		}
		c.PaymentMode = domain.PaymentMode(mode)
		if lat.Valid {
			c.Latitude = &lat.Float64
		}
		if lng.Valid {
			c.Longitude = &lng.Float64
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// ReportRow is a collection event joined with shop and employee names for
// owner reports.
type ReportRow struct {
	Collection   domain.Collection
	ShopName     string
	EmployeeName string
}

func (r CollectionRepository) Report(ctx context.Context, ownerID int64, start, end *time.Time) ([]ReportRow, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT c.id, c.shop_id, c.employee_id, c.amount, c.payment_mode, c.remarks,
		       c.latitude, c.longitude, c.collected_at, s.name, u.name
		FROM collections c
		JOIN shops s ON s.id = c.shop_id
		JOIN users u ON u.id = c.employee_id
		WHERE s.owner_id = $1
		  AND ($2::timestamptz IS NULL OR c.collected_at >= $2)
		  AND ($3::timestamptz IS NULL OR c.collected_at < $3 + interval '1 day')
		ORDER BY c.collected_at DESC, c.id DESC
	`, ownerID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ReportRow
	for rows.Next() {
		var row ReportRow
		var mode string
		var lat, lng pgtype.Float8
		if err := rows.Scan(
			&row.Collection.ID, &row.Collection.ShopID, &row.Collection.EmployeeID,
			&row.Collection.Amount, &mode, &row.Collection.Remarks,
			&lat, &lng, &row.Collection.CollectedAt, &row.ShopName, &row.EmployeeName,
		); err != nil {
			return nil, err
		}
		row.Collection.PaymentMode = domain.PaymentMode(mode)
		if lat.Valid {
			row.Collection.Latitude = &lat.Float64
		}
		if lng.Valid {
			row.Collection.Longitude = &lng.Float64
		}
		items = append(items, row)
	}
	return items, rows.Err()
}

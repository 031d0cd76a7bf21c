package repository

import (
	"context"
	"errors"

	"fieldtrack-backend/internal/db"
	"fieldtrack-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type ShopRepository struct {
	DB *db.Postgres
}

type CreateShopParams struct {
	Name           string
	Address        string
	Mobile         string
	DueAmount      float64
	Latitude       *float64
	Longitude      *float64
	GeofenceRadius int
}

const shopColumns = `id, owner_id, name, address, mobile, due_amount, latitude, longitude,
	       geofence_radius, created_at, updated_at`

func (r ShopRepository) Create(ctx context.Context, ownerID int64, p CreateShopParams) (*domain.Shop, error) {
	if p.GeofenceRadius <= 0 {
		p.GeofenceRadius = 500
	}
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO shops (owner_id, name, address, mobile, due_amount, latitude, longitude, geofence_radius, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8, now(), now())
		RETURNING `+shopColumns+`
	`, ownerID, p.Name, p.Address, p.Mobile, p.DueAmount, p.Latitude, p.Longitude, p.GeofenceRadius)
	return scanShop(row)
}

func (r ShopRepository) Get(ctx context.Context, ownerID, shopID int64) (*domain.Shop, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+shopColumns+`
		FROM shops
		WHERE id=$1 AND owner_id=$2 AND deleted_at IS NULL
	`, shopID, ownerID)
	shop, err := scanShop(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return shop, nil
}

func (r ShopRepository) List(ctx context.Context, ownerID int64) ([]domain.Shop, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+shopColumns+`
		FROM shops
		WHERE owner_id=$1 AND deleted_at IS NULL
		ORDER BY name ASC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShops(rows)
}

type UpdateShopParams struct {
	Name           *string
	Address        *string
	Mobile         *string
	DueAmount      *float64
	Latitude       *float64
	Longitude      *float64
	GeofenceRadius *int
}

// Update applies only the non-nil fields.
func (r ShopRepository) Update(ctx context.Context, ownerID, shopID int64, p UpdateShopParams) (*domain.Shop, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE shops SET
			name            = COALESCE($3, name),
			address         = COALESCE($4, address),
			mobile          = COALESCE($5, mobile),
			due_amount      = COALESCE($6, due_amount),
			latitude        = COALESCE($7, latitude),
			longitude       = COALESCE($8, longitude),
			geofence_radius = COALESCE($9, geofence_radius),
			updated_at = now()
		WHERE id=$1 AND owner_id=$2 AND deleted_at IS NULL
		RETURNING `+shopColumns+`
	`, shopID, ownerID, p.Name, p.Address, p.Mobile, p.DueAmount, p.Latitude, p.Longitude, p.GeofenceRadius)
	shop, err := scanShop(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return shop, nil
}

func (r ShopRepository) Delete(ctx context.Context, ownerID, shopID int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE shops SET deleted_at=now()
		WHERE id=$1 AND owner_id=$2 AND deleted_at IS NULL
	`, shopID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanShop(row pgx.Row) (*domain.Shop, error) {
	var (
		s   domain.Shop
		lat pgtype.Float8
		lng pgtype.Float8
	)
	if err := row.Scan(
		&s.ID, &s.OwnerID, &s.Name, &s.Address, &s.Mobile, &s.DueAmount,
		&lat, &lng, &s.GeofenceRadius, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lat.Valid {
		s.Latitude = &lat.Float64
	}
	if lng.Valid {
		s.Longitude = &lng.Float64
	}
	return &s, nil
}

func collectShops(rows pgx.Rows) ([]domain.Shop, error) {
	var items []domain.Shop
	for rows.Next() {
		s, err := scanShop(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	return items, rows.Err()
}

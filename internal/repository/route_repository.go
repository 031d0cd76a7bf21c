package repository

import (
	"context"
	"errors"
	"time"

	"fieldtrack-backend/internal/db"
	"fieldtrack-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type RouteRepository struct {
	DB *db.Postgres
}

type CreateRouteInput struct {
	Name         string
	Days         domain.WeekdaySet
	ShopIDs      []int64
	AssignedToID *int64
}

// Create persists a route and one stop per shop with stop_order = index.
func (r RouteRepository) Create(ctx context.Context, ownerID int64, in CreateRouteInput) (*domain.Route, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	route := domain.Route{OwnerID: ownerID, Name: in.Name, Days: in.Days, AssignedToID: in.AssignedToID}
	err = tx.QueryRow(ctx, `
		INSERT INTO routes (owner_id, name, day_of_week, assigned_to_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4, now(), now())
		RETURNING id, created_at, updated_at
	`, ownerID, in.Name, in.Days.String(), in.AssignedToID).Scan(&route.ID, &route.CreatedAt, &route.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := insertStops(ctx, tx, &route, ownerID, in.ShopIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &route, nil
}

type UpdateRouteInput struct {
	Name         string
	Days         domain.WeekdaySet
	ShopIDs      []int64
	AssignedToID *int64
}

// Update replaces the entire stop list (delete-all then recreate) rather than
// diffing. Any future stop-level metadata would be lost on every edit.
func (r RouteRepository) Update(ctx context.Context, ownerID, routeID int64, in UpdateRouteInput) (*domain.Route, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	route := domain.Route{ID: routeID, OwnerID: ownerID, Name: in.Name, Days: in.Days, AssignedToID: in.AssignedToID}
	err = tx.QueryRow(ctx, `
		UPDATE routes SET name=$3, day_of_week=$4, assigned_to_id=$5, updated_at=now()
		WHERE id=$1 AND owner_id=$2 AND deleted_at IS NULL
		RETURNING created_at, updated_at
	`, routeID, ownerID, in.Name, in.Days.String(), in.AssignedToID).Scan(&route.CreatedAt, &route.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM route_stops WHERE route_id=$1`, routeID); err != nil {
		return nil, err
	}
	if err := insertStops(ctx, tx, &route, ownerID, in.ShopIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &route, nil
}

func insertStops(ctx context.Context, tx pgx.Tx, route *domain.Route, ownerID int64, shopIDs []int64) error {
	for i, shopID := range shopIDs {
		// Stops may only reference shops in the same tenant.
		var ok bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM shops WHERE id=$1 AND owner_id=$2 AND deleted_at IS NULL)
		`, shopID, ownerID).Scan(&ok); err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		stop := domain.RouteStop{RouteID: route.ID, ShopID: shopID, Order: i}
		err := tx.QueryRow(ctx, `
			INSERT INTO route_stops (route_id, shop_id, stop_order)
			VALUES ($1,$2,$3)
			RETURNING id
		`, route.ID, shopID, i).Scan(&stop.ID)
		if err != nil {
			return err
		}
		route.Stops = append(route.Stops, stop)
	}
	return nil
}

func (r RouteRepository) Delete(ctx context.Context, ownerID, routeID int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE routes SET deleted_at=now()
		WHERE id=$1 AND owner_id=$2 AND deleted_at IS NULL
	`, routeID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListForOwner returns all of a tenant's routes with ordered, shop-resolved
// stops.
func (r RouteRepository) ListForOwner(ctx context.Context, ownerID int64) ([]domain.Route, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, owner_id, name, day_of_week, assigned_to_id, created_at, updated_at
		FROM routes
		WHERE owner_id=$1 AND deleted_at IS NULL
		ORDER BY name ASC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	routes, err := collectRoutes(rows)
	if err != nil {
		return nil, err
	}
	return r.attachStops(ctx, routes)
}

// ResolveToday returns the routes assigned to the employee that are scheduled
// for today's weekday, stops ordered ascending. An employee with nothing
// scheduled gets an empty slice, not an error.
func (r RouteRepository) ResolveToday(ctx context.Context, employeeID int64, now time.Time) ([]domain.Route, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, owner_id, name, day_of_week, assigned_to_id, created_at, updated_at
		FROM routes
		WHERE assigned_to_id=$1 AND deleted_at IS NULL
		  AND $2 = ANY(string_to_array(day_of_week, ','))
		ORDER BY name ASC
	`, employeeID, domain.WeekdayToken(now))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	routes, err := collectRoutes(rows)
	if err != nil {
		return nil, err
	}
	return r.attachStops(ctx, routes)
}

func collectRoutes(rows pgx.Rows) ([]domain.Route, error) {
	var routes []domain.Route
	for rows.Next() {
		var rt domain.Route
		var dayStr string
		var assigned pgtype.Int8
		if err := rows.Scan(&rt.ID, &rt.OwnerID, &rt.Name, &dayStr, &assigned, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, err
		}
		days, err := domain.ParseWeekdayString(dayStr)
		if err != nil {
			return nil, err
		}
		rt.Days = days
		if assigned.Valid {
			rt.AssignedToID = &assigned.Int64
		}
		routes = append(routes, rt)
	}
	return routes, rows.Err()
}

func (r RouteRepository) attachStops(ctx context.Context, routes []domain.Route) ([]domain.Route, error) {
	if len(routes) == 0 {
		return routes, nil
	}
	ids := make([]int64, 0, len(routes))
	for _, rt := range routes {
		ids = append(ids, rt.ID)
	}

	rows, err := r.DB.Pool.Query(ctx, `
		SELECT rs.id, rs.route_id, rs.shop_id, rs.stop_order,
		       s.id, s.owner_id, s.name, s.address, s.mobile, s.due_amount,
		       s.latitude, s.longitude, s.geofence_radius, s.created_at, s.updated_at
		FROM route_stops rs
		JOIN shops s ON s.id = rs.shop_id
		WHERE rs.route_id = ANY($1) AND s.deleted_at IS NULL
		ORDER BY rs.route_id, rs.stop_order ASC
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stopsByRoute := make(map[int64][]domain.RouteStop)
	for rows.Next() {
		var stop domain.RouteStop
		var shop domain.Shop
		var lat, lng pgtype.Float8
		if err := rows.Scan(
			&stop.ID, &stop.RouteID, &stop.ShopID, &stop.Order,
			&shop.ID, &shop.OwnerID, &shop.Name, &shop.Address, &shop.Mobile, &shop.DueAmount,
			&lat, &lng, &shop.GeofenceRadius, &shop.CreatedAt, &shop.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if lat.Valid {
			shop.Latitude = &lat.Float64
		}
		if lng.Valid {
			shop.Longitude = &lng.Float64
		}
		stop.Shop = &shop
		stopsByRoute[stop.RouteID] = append(stopsByRoute[stop.RouteID], stop)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range routes {
		routes[i].Stops = stopsByRoute[routes[i].ID]
	}
	return routes, nil
}

package repository

import (
	"context"

	"fieldtrack-backend/internal/db"
	"fieldtrack-backend/internal/domain"
)

type DashboardRepository struct {
	DB *db.Postgres
}

type OwnerSummary struct {
	ShopCount        int64
	EmployeeCount    int64
	OnDutyCount      int64
	RouteCount       int64
	TotalDue         float64
	TodayCollected   float64
	TodayCollections int64
}

func (r DashboardRepository) OwnerSummary(ctx context.Context, ownerID int64) (OwnerSummary, error) {
	var s OwnerSummary
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM shops WHERE owner_id=$1 AND deleted_at IS NULL),
			(SELECT COUNT(*) FROM users WHERE owner_id=$1 AND role=$2 AND deleted_at IS NULL),
			(SELECT COUNT(*) FROM users WHERE owner_id=$1 AND role=$2 AND is_on_duty AND deleted_at IS NULL),
			(SELECT COUNT(*) FROM routes WHERE owner_id=$1 AND deleted_at IS NULL),
			(SELECT COALESCE(SUM(due_amount),0) FROM shops WHERE owner_id=$1 AND deleted_at IS NULL),
			(SELECT COALESCE(SUM(c.amount),0) FROM collections c JOIN shops s ON s.id=c.shop_id
			   WHERE s.owner_id=$1 AND c.collected_at::date = CURRENT_DATE),
			(SELECT COUNT(*) FROM collections c JOIN shops s ON s.id=c.shop_id
			   WHERE s.owner_id=$1 AND c.collected_at::date = CURRENT_DATE)
	`, ownerID, domain.RoleEmployee).Scan(
		&s.ShopCount, &s.EmployeeCount, &s.OnDutyCount, &s.RouteCount,
		&s.TotalDue, &s.TodayCollected, &s.TodayCollections,
	)
	return s, err
}

type EmployeeSummary struct {
	TodayCollected   float64
	TodayCollections int64
}

func (r DashboardRepository) EmployeeSummary(ctx context.Context, employeeID int64) (EmployeeSummary, error) {
	var s EmployeeSummary
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount),0), COUNT(*)
		FROM collections
		WHERE employee_id=$1 AND collected_at::date = CURRENT_DATE
	`, employeeID).Scan(&s.TodayCollected, &s.TodayCollections)
	return s, err
}

// TenantStats gives the admin a per-owner overview.
type TenantStats struct {
	OwnerID       int64
	ShopCount     int64
	EmployeeCount int64
	TotalDue      float64
}

func (r DashboardRepository) TenantStats(ctx context.Context, ownerID int64) (TenantStats, error) {
	s := TenantStats{OwnerID: ownerID}
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM shops WHERE owner_id=$1 AND deleted_at IS NULL),
			(SELECT COUNT(*) FROM users WHERE owner_id=$1 AND role=$2 AND deleted_at IS NULL),
			(SELECT COALESCE(SUM(due_amount),0) FROM shops WHERE owner_id=$1 AND deleted_at IS NULL)
	`, ownerID, domain.RoleEmployee).Scan(&s.ShopCount, &s.EmployeeCount, &s.TotalDue)
	return s, err
}

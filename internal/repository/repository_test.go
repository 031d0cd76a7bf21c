package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"fieldtrack-backend/internal/db"
	"fieldtrack-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func setupTestDB(t *testing.T) (*db.Postgres, func()) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	schema := fmt.Sprintf("test_%d", time.Now().UnixNano())
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
		return err
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", schema)); err != nil {
		pool.Close()
		t.Fatalf("create schema: %v", err)
	}
	if err := createTestTables(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("create tables: %v", err)
	}
	pg := &db.Postgres{Pool: pool}
	return pg, func() {
		_, _ = pool.Exec(ctx, fmt.Sprintf("DROP SCHEMA %s CASCADE", schema))
		pool.Close()
	}
}

func createTestTables(ctx context.Context, pool *pgxpool.Pool) error {
	queries := []string{
		`CREATE TABLE users (id bigserial PRIMARY KEY, owner_id bigint, name text NOT NULL DEFAULT '', email text NOT NULL, phone text NOT NULL DEFAULT '', role text NOT NULL, password_hash text, is_on_duty boolean NOT NULL DEFAULT false, last_latitude double precision, last_longitude double precision, last_location_update timestamptz, plan_type text NOT NULL DEFAULT '', subscription_status text NOT NULL DEFAULT '', subscription_expiry timestamptz, owned_domain text, created_at timestamptz NOT NULL DEFAULT now(), updated_at timestamptz NOT NULL DEFAULT now(), deleted_at timestamptz)`,
		`CREATE UNIQUE INDEX users_email_idx ON users (email)`,
		`CREATE TABLE shops (id bigserial PRIMARY KEY, owner_id bigint NOT NULL, name text NOT NULL, address text NOT NULL DEFAULT '', mobile text NOT NULL DEFAULT '', due_amount numeric(14,2) NOT NULL DEFAULT 0, latitude double precision, longitude double precision, geofence_radius int NOT NULL DEFAULT 500, created_at timestamptz NOT NULL DEFAULT now(), updated_at timestamptz NOT NULL DEFAULT now(), deleted_at timestamptz)`,
		`CREATE TABLE collections (id bigserial PRIMARY KEY, shop_id bigint NOT NULL REFERENCES shops(id), employee_id bigint NOT NULL, amount numeric(14,2) NOT NULL CHECK (amount > 0), payment_mode text NOT NULL, remarks text NOT NULL DEFAULT '', latitude double precision, longitude double precision, collected_at timestamptz NOT NULL DEFAULT now())`,
		`CREATE TABLE routes (id bigserial PRIMARY KEY, owner_id bigint NOT NULL, name text NOT NULL, day_of_week text NOT NULL DEFAULT '', assigned_to_id bigint, created_at timestamptz NOT NULL DEFAULT now(), updated_at timestamptz NOT NULL DEFAULT now(), deleted_at timestamptz)`,
		`CREATE TABLE route_stops (id bigserial PRIMARY KEY, route_id bigint NOT NULL REFERENCES routes(id) ON DELETE CASCADE, shop_id bigint NOT NULL REFERENCES shops(id), stop_order int NOT NULL)`,
		`CREATE TABLE duty_logs (id bigserial PRIMARY KEY, employee_id bigint NOT NULL, status text NOT NULL, latitude double precision, longitude double precision, logged_at timestamptz NOT NULL DEFAULT now())`,
		`CREATE TABLE location_history (id bigserial PRIMARY KEY, employee_id bigint NOT NULL, latitude double precision NOT NULL, longitude double precision NOT NULL, recorded_at timestamptz NOT NULL DEFAULT now())`,
		`CREATE TABLE import_batches (id bigserial PRIMARY KEY, owner_id bigint NOT NULL, kind text NOT NULL, created_count int NOT NULL DEFAULT 0, updated_count int NOT NULL DEFAULT 0, revert_data jsonb NOT NULL DEFAULT '{}'::jsonb, created_at timestamptz NOT NULL DEFAULT now())`,
	}
	for _, query := range queries {
		if _, err := pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func seedOwner(t *testing.T, pg *db.Postgres, email string) int64 {
	t.Helper()
	var id int64
	err := pg.Pool.QueryRow(context.Background(), `
		INSERT INTO users (name, email, role) VALUES ('Owner', $1, 'OWNER') RETURNING id
	`, email).Scan(&id)
	if err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	return id
}

func seedEmployee(t *testing.T, pg *db.Postgres, ownerID int64, email string) int64 {
	t.Helper()
	var id int64
	err := pg.Pool.QueryRow(context.Background(), `
		INSERT INTO users (owner_id, name, email, role) VALUES ($1, 'Employee', $2, 'EMPLOYEE') RETURNING id
	`, ownerID, email).Scan(&id)
	if err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	return id
}

func seedShop(t *testing.T, pg *db.Postgres, ownerID int64, name string, due float64) int64 {
	t.Helper()
	var id int64
	err := pg.Pool.QueryRow(context.Background(), `
		INSERT INTO shops (owner_id, name, due_amount) VALUES ($1, $2, $3) RETURNING id
	`, ownerID, name, due).Scan(&id)
	if err != nil {
		t.Fatalf("seed shop: %v", err)
	}
	return id
}

func shopDue(t *testing.T, pg *db.Postgres, shopID int64) float64 {
	t.Helper()
	var due float64
	if err := pg.Pool.QueryRow(context.Background(), `SELECT due_amount FROM shops WHERE id=$1`, shopID).Scan(&due); err != nil {
		t.Fatalf("read due: %v", err)
	}
	return due
}

func TestCollectionDecrementsDue(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	ownerID := seedOwner(t, pg, "owner1@test.local")
	employeeID := seedEmployee(t, pg, ownerID, "emp1@test.local")
	shopID := seedShop(t, pg, ownerID, "Corner Store", 100)

	repo := CollectionRepository{DB: pg}
	c, err := repo.Create(ctx, CreateCollectionInput{
		OwnerID:     ownerID,
		ShopID:      shopID,
		EmployeeID:  employeeID,
		Amount:      30,
		PaymentMode: domain.PaymentCash,
	})
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	if c.ID == 0 || c.Amount != 30 {
		t.Fatalf("unexpected collection: %+v", c)
	}
	if due := shopDue(t, pg, shopID); due != 70 {
		t.Fatalf("expected due 70, got %v", due)
	}

	// overpayment pushes the balance negative rather than clamping
	if _, err := repo.Create(ctx, CreateCollectionInput{
		OwnerID:     ownerID,
		ShopID:      shopID,
		EmployeeID:  employeeID,
		Amount:      100,
		PaymentMode: domain.PaymentUPI,
	}); err != nil {
		t.Fatalf("overpay: %v", err)
	}
	if due := shopDue(t, pg, shopID); due != -30 {
		t.Fatalf("expected due -30, got %v", due)
	}
}

func TestCollectionUnknownShop(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	ownerID := seedOwner(t, pg, "owner2@test.local")
	otherOwnerID := seedOwner(t, pg, "owner3@test.local")
	employeeID := seedEmployee(t, pg, ownerID, "emp2@test.local")
	foreignShopID := seedShop(t, pg, otherOwnerID, "Foreign Shop", 50)

	repo := CollectionRepository{DB: pg}
	_, err := repo.Create(ctx, CreateCollectionInput{
		OwnerID:     ownerID,
		ShopID:      foreignShopID,
		EmployeeID:  employeeID,
		Amount:      10,
		PaymentMode: domain.PaymentCash,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another tenant's shop, got %v", err)
	}
	if due := shopDue(t, pg, foreignShopID); due != 50 {
		t.Fatalf("foreign shop due should be untouched, got %v", due)
	}
}

func TestCollectionConcurrentDecrement(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	ownerID := seedOwner(t, pg, "owner4@test.local")
	employeeID := seedEmployee(t, pg, ownerID, "emp4@test.local")
	shopID := seedShop(t, pg, ownerID, "Busy Shop", 1000)

	repo := CollectionRepository{DB: pg}
	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, CreateCollectionInput{
				OwnerID:     ownerID,
				ShopID:      shopID,
				EmployeeID:  employeeID,
				Amount:      10,
				PaymentMode: domain.PaymentCash,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent create: %v", err)
		}
	}
	if due := shopDue(t, pg, shopID); due != 900 {
		t.Fatalf("expected due 900 after %d concurrent collections, got %v", workers, due)
	}
}

func TestDutyToggleAppendsLog(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	ownerID := seedOwner(t, pg, "owner5@test.local")
	employeeID := seedEmployee(t, pg, ownerID, "emp5@test.local")

	repo := DutyRepository{DB: pg}
	lat, lng := 12.97, 77.59
	if _, err := repo.Toggle(ctx, employeeID, true, &domain.LatLng{Latitude: lat, Longitude: lng}); err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	// toggling to the same state still appends a log entry
	if _, err := repo.Toggle(ctx, employeeID, true, nil); err != nil {
		t.Fatalf("toggle on again: %v", err)
	}
	if _, err := repo.Toggle(ctx, employeeID, false, nil); err != nil {
		t.Fatalf("toggle off: %v", err)
	}

	var onDuty bool
	if err := pg.Pool.QueryRow(ctx, `SELECT is_on_duty FROM users WHERE id=$1`, employeeID).Scan(&onDuty); err != nil {
		t.Fatalf("read duty flag: %v", err)
	}
	if onDuty {
		t.Fatal("expected employee off duty")
	}

	logs, err := repo.ListDay(ctx, employeeID, time.Now())
	if err != nil {
		t.Fatalf("list day: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("expected 3 duty logs, got %d", len(logs))
	}
	if logs[0].Status != domain.DutyOn || logs[2].Status != domain.DutyOff {
		t.Fatalf("unexpected log order: %+v", logs)
	}
	if logs[0].Latitude == nil || *logs[0].Latitude != lat {
		t.Fatalf("expected coords on first log, got %+v", logs[0])
	}
}

func TestDutyToggleUnknownEmployee(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	repo := DutyRepository{DB: pg}
	if _, err := repo.Toggle(context.Background(), 999999, true, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordSampleUpdatesLastKnown(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	ownerID := seedOwner(t, pg, "owner6@test.local")
	employeeID := seedEmployee(t, pg, ownerID, "emp6@test.local")

	repo := LocationRepository{DB: pg}
	if _, err := repo.RecordSample(ctx, employeeID, 10.0, 20.0, time.Time{}); err != nil {
		t.Fatalf("first sample: %v", err)
	}
	if _, err := repo.RecordSample(ctx, employeeID, 11.0, 21.0, time.Time{}); err != nil {
		t.Fatalf("second sample: %v", err)
	}

	var lat, lng float64
	if err := pg.Pool.QueryRow(ctx, `SELECT last_latitude, last_longitude FROM users WHERE id=$1`, employeeID).Scan(&lat, &lng); err != nil {
		t.Fatalf("read last known: %v", err)
	}
	if lat != 11.0 || lng != 21.0 {
		t.Fatalf("expected last known (11,21), got (%v,%v)", lat, lng)
	}

	trail, err := repo.Trail(ctx, employeeID, time.Now())
	if err != nil {
		t.Fatalf("trail: %v", err)
	}
	if len(trail) != 2 {
		t.Fatalf("expected 2 trail points, got %d", len(trail))
	}
}

func TestRouteResolveToday(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	ownerID := seedOwner(t, pg, "owner7@test.local")
	employeeID := seedEmployee(t, pg, ownerID, "emp7@test.local")
	shopID := seedShop(t, pg, ownerID, "Stop One", 0)

	now := time.Now()
	today, err := domain.ParseWeekdaySet([]string{domain.WeekdayToken(now)})
	if err != nil {
		t.Fatalf("parse weekday: %v", err)
	}

	repo := RouteRepository{DB: pg}
	created, err := repo.Create(ctx, ownerID, CreateRouteInput{
		Name:         "Morning Run",
		Days:         today,
		ShopIDs:      []int64{shopID},
		AssignedToID: &employeeID,
	})
	if err != nil {
		t.Fatalf("create route: %v", err)
	}
	if len(created.Stops) != 1 || created.Stops[0].ShopID != shopID {
		t.Fatalf("unexpected stops: %+v", created.Stops)
	}

	routes, err := repo.ResolveToday(ctx, employeeID, now)
	if err != nil {
		t.Fatalf("resolve today: %v", err)
	}
	if len(routes) != 1 || routes[0].Name != "Morning Run" {
		t.Fatalf("expected one route today, got %+v", routes)
	}
	if len(routes[0].Stops) != 1 || routes[0].Stops[0].Shop == nil {
		t.Fatalf("expected hydrated stop, got %+v", routes[0].Stops)
	}

	// unassigned employee gets nothing, not an error
	otherID := seedEmployee(t, pg, ownerID, "emp8@test.local")
	routes, err = repo.ResolveToday(ctx, otherID, now)
	if err != nil {
		t.Fatalf("resolve for unassigned: %v", err)
	}
	if len(routes) != 0 {
		t.Fatalf("expected no routes, got %d", len(routes))
	}
}

func TestRouteUpdateReplacesStops(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	ownerID := seedOwner(t, pg, "owner9@test.local")
	shopA := seedShop(t, pg, ownerID, "Shop A", 0)
	shopB := seedShop(t, pg, ownerID, "Shop B", 0)

	days, _ := domain.ParseWeekdaySet([]string{"monday"})
	repo := RouteRepository{DB: pg}
	created, err := repo.Create(ctx, ownerID, CreateRouteInput{Name: "R", Days: days, ShopIDs: []int64{shopA, shopB}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := repo.Update(ctx, ownerID, created.ID, UpdateRouteInput{Name: "R", Days: days, ShopIDs: []int64{shopB}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Stops) != 1 || updated.Stops[0].ShopID != shopB {
		t.Fatalf("expected stop list replaced with shop B, got %+v", updated.Stops)
	}

	var count int
	if err := pg.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM route_stops WHERE route_id=$1`, created.ID).Scan(&count); err != nil {
		t.Fatalf("count stops: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 stop row, got %d", count)
	}
}

func TestRouteStopsExcludeDeletedShops(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	ownerID := seedOwner(t, pg, "owner14@test.local")
	employeeID := seedEmployee(t, pg, ownerID, "emp14@test.local")
	shopA := seedShop(t, pg, ownerID, "Keeper", 0)
	shopB := seedShop(t, pg, ownerID, "Goner", 0)

	now := time.Now()
	today, err := domain.ParseWeekdaySet([]string{domain.WeekdayToken(now)})
	if err != nil {
		t.Fatalf("parse weekday: %v", err)
	}

	routes := RouteRepository{DB: pg}
	created, err := routes.Create(ctx, ownerID, CreateRouteInput{
		Name:         "Shrinking Run",
		Days:         today,
		ShopIDs:      []int64{shopA, shopB},
		AssignedToID: &employeeID,
	})
	if err != nil {
		t.Fatalf("create route: %v", err)
	}

	shops := ShopRepository{DB: pg}
	if err := shops.Delete(ctx, ownerID, shopB); err != nil {
		t.Fatalf("delete shop: %v", err)
	}

	listed, err := routes.ListForOwner(ctx, ownerID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("expected the one route, got %+v", listed)
	}
	if len(listed[0].Stops) != 1 || listed[0].Stops[0].ShopID != shopA {
		t.Fatalf("deleted shop must drop out of the stop list, got %+v", listed[0].Stops)
	}

	resolved, err := routes.ResolveToday(ctx, employeeID, now)
	if err != nil {
		t.Fatalf("resolve today: %v", err)
	}
	if len(resolved) != 1 || len(resolved[0].Stops) != 1 || resolved[0].Stops[0].ShopID != shopA {
		t.Fatalf("deleted shop must drop out of today's stops, got %+v", resolved)
	}
}

func TestImportShopsAndUndo(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	ownerID := seedOwner(t, pg, "owner10@test.local")
	existingID := seedShop(t, pg, ownerID, "Old Shop", 40)

	addr := "New Street"
	due := 75.0
	repo := ImportRepository{DB: pg}
	batch, err := repo.ImportShops(ctx, ownerID, []ImportRow{
		{Name: "old shop", Due: &due},      // matches case-insensitively, updates due only
		{Name: "Fresh Shop", Address: &addr}, // new shop
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if batch.CreatedCount != 1 || batch.UpdatedCount != 1 {
		t.Fatalf("expected 1 created / 1 updated, got %d/%d", batch.CreatedCount, batch.UpdatedCount)
	}
	if d := shopDue(t, pg, existingID); d != 75 {
		t.Fatalf("expected updated due 75, got %v", d)
	}
	var name string
	if err := pg.Pool.QueryRow(ctx, `SELECT name FROM shops WHERE id=$1`, existingID).Scan(&name); err != nil {
		t.Fatalf("read name: %v", err)
	}
	if name != "Old Shop" {
		t.Fatalf("import must not rename matched shops, got %q", name)
	}

	if err := repo.Undo(ctx, ownerID, batch.ID, time.Now()); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if d := shopDue(t, pg, existingID); d != 40 {
		t.Fatalf("expected due restored to 40, got %v", d)
	}
	var count int
	if err := pg.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM shops WHERE owner_id=$1 AND deleted_at IS NULL`, ownerID).Scan(&count); err != nil {
		t.Fatalf("count shops: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected created shop gone on undo, have %d live shops", count)
	}

	// a reverted batch cannot be undone twice
	if err := repo.Undo(ctx, ownerID, batch.ID, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second undo, got %v", err)
	}
}

func TestUndoKeepsCollectedAgainstShops(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	ownerID := seedOwner(t, pg, "owner15@test.local")
	employeeID := seedEmployee(t, pg, ownerID, "emp15@test.local")

	repo := ImportRepository{DB: pg}
	batch, err := repo.ImportShops(ctx, ownerID, []ImportRow{{Name: "Brand New"}})
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	var shopID int64
	if err := pg.Pool.QueryRow(ctx, `SELECT id FROM shops WHERE owner_id=$1 AND name='Brand New'`, ownerID).Scan(&shopID); err != nil {
		t.Fatalf("read created shop: %v", err)
	}

	// a collection lands against the imported shop before the owner undoes
	collections := CollectionRepository{DB: pg}
	if _, err := collections.Create(ctx, CreateCollectionInput{
		OwnerID:     ownerID,
		ShopID:      shopID,
		EmployeeID:  employeeID,
		Amount:      25,
		PaymentMode: domain.PaymentCash,
	}); err != nil {
		t.Fatalf("collect: %v", err)
	}

	if err := repo.Undo(ctx, ownerID, batch.ID, time.Now()); err != nil {
		t.Fatalf("undo with recorded collection: %v", err)
	}

	var deletedAt *time.Time
	if err := pg.Pool.QueryRow(ctx, `SELECT deleted_at FROM shops WHERE id=$1`, shopID).Scan(&deletedAt); err != nil {
		t.Fatalf("read shop: %v", err)
	}
	if deletedAt == nil {
		t.Fatal("expected created shop soft-deleted on undo")
	}

	var count int
	if err := pg.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM collections WHERE shop_id=$1`, shopID).Scan(&count); err != nil {
		t.Fatalf("count collections: %v", err)
	}
	if count != 1 {
		t.Fatalf("undo must keep the collection row, have %d", count)
	}
}

func TestUndoExpiredLeavesDataUntouched(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	ownerID := seedOwner(t, pg, "owner11@test.local")
	shopID := seedShop(t, pg, ownerID, "Stale Shop", 20)

	due := 99.0
	repo := ImportRepository{DB: pg}
	batch, err := repo.ImportShops(ctx, ownerID, []ImportRow{{Name: "Stale Shop", Due: &due}})
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	late := time.Now().Add(UndoWindow + time.Second)
	if err := repo.Undo(ctx, ownerID, batch.ID, late); !errors.Is(err, ErrUndoExpired) {
		t.Fatalf("expected ErrUndoExpired, got %v", err)
	}
	if d := shopDue(t, pg, shopID); d != 99 {
		t.Fatalf("expired undo must not write, got due %v", d)
	}
	var count int
	if err := pg.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM import_batches WHERE id=$1`, batch.ID).Scan(&count); err != nil {
		t.Fatalf("count batches: %v", err)
	}
	if count != 1 {
		t.Fatal("expired undo must keep the batch row")
	}
}

func TestBulkUpdateDuesReportsMissing(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	ownerID := seedOwner(t, pg, "owner12@test.local")
	shopID := seedShop(t, pg, ownerID, "Known Shop", 10)

	repo := ImportRepository{DB: pg}
	batch, missing, err := repo.BulkUpdateDues(ctx, ownerID, []DueRow{
		{Name: "Known Shop", Due: 55},
		{Name: "Ghost Shop", Due: 5},
	})
	if err != nil {
		t.Fatalf("bulk dues: %v", err)
	}
	if batch.UpdatedCount != 1 {
		t.Fatalf("expected 1 updated, got %d", batch.UpdatedCount)
	}
	if len(missing) != 1 || missing[0] != "Ghost Shop" {
		t.Fatalf("expected Ghost Shop reported missing, got %v", missing)
	}
	if d := shopDue(t, pg, shopID); d != 55 {
		t.Fatalf("expected due 55, got %v", d)
	}
}

func TestShopSoftDelete(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	ownerID := seedOwner(t, pg, "owner13@test.local")
	repo := ShopRepository{DB: pg}
	shop, err := repo.Create(ctx, ownerID, CreateShopParams{Name: "Short Lived"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if shop.GeofenceRadius != 500 {
		t.Fatalf("expected default geofence 500, got %d", shop.GeofenceRadius)
	}
	if err := repo.Delete(ctx, ownerID, shop.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, ownerID, shop.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, ownerID, shop.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}
